package services

import (
	"context"
	"testing"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSubscribeDeactivatesPreviousSubscription(t *testing.T) {
	subscriberRepo := memory.NewSubscriberStore()
	planRepo := memory.NewPlanStore()
	service := NewSubscriptionService(subscriberRepo, planRepo, newTestLogger(t))

	basic := &models.Plan{Name: "basic", MaxDrivers: 2, MaxVehicles: 2}
	pro := &models.Plan{Name: "pro", MaxDrivers: 10, MaxVehicles: 10}
	require.NoError(t, planRepo.Create(context.Background(), basic))
	require.NoError(t, planRepo.Create(context.Background(), pro))

	userID := primitive.NewObjectID()

	first, err := service.Subscribe(context.Background(), userID, basic.ID)
	require.NoError(t, err)
	assert.True(t, first.IsActive)

	second, err := service.Subscribe(context.Background(), userID, pro.ID)
	require.NoError(t, err)
	assert.True(t, second.IsActive)

	// Only the upgrade remains active.
	active, err := service.GetActiveSubscription(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, pro.ID, active.PlanID)

	old, err := subscriberRepo.GetByID(context.Background(), first.ID)
	require.NoError(t, err)
	assert.False(t, old.IsActive)
}

func TestSubscribeUnknownPlan(t *testing.T) {
	service := NewSubscriptionService(memory.NewSubscriberStore(), memory.NewPlanStore(), newTestLogger(t))

	_, err := service.Subscribe(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.Error(t, err)
}

func TestSubscriptionEndHonorsTrialAndCycle(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	monthly := &models.Plan{BillingCycle: models.BillingCycleMonthly}
	assert.Equal(t, start.AddDate(0, 1, 0), subscriptionEnd(start, monthly))

	yearly := &models.Plan{BillingCycle: models.BillingCycleYearly}
	assert.Equal(t, start.AddDate(1, 0, 0), subscriptionEnd(start, yearly))

	trial := &models.Plan{BillingCycle: models.BillingCycleMonthly, TrialDays: 14}
	assert.Equal(t, start.AddDate(0, 0, 14).AddDate(0, 1, 0), subscriptionEnd(start, trial))
}
