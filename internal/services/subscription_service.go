package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/interfaces"
	"fleetdesk/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriptionService interface {
	CreatePlan(ctx context.Context, plan *models.Plan) error
	ListPlans(ctx context.Context) ([]*models.Plan, error)

	// Subscribe activates a plan for the user, deactivating any previously
	// active subscription so at most one active record exists per user.
	Subscribe(ctx context.Context, userID, planID primitive.ObjectID) (*models.Subscriber, error)
	GetActiveSubscription(ctx context.Context, userID primitive.ObjectID) (*models.Subscriber, error)
}

type subscriptionService struct {
	subscriberRepo interfaces.SubscriberRepository
	planRepo       interfaces.PlanRepository
	logger         *logger.Logger
}

func NewSubscriptionService(
	subscriberRepo interfaces.SubscriberRepository,
	planRepo interfaces.PlanRepository,
	logger *logger.Logger,
) SubscriptionService {
	return &subscriptionService{
		subscriberRepo: subscriberRepo,
		planRepo:       planRepo,
		logger:         logger,
	}
}

func (s *subscriptionService) CreatePlan(ctx context.Context, plan *models.Plan) error {
	if err := s.planRepo.Create(ctx, plan); err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}
	return nil
}

func (s *subscriptionService) ListPlans(ctx context.Context) ([]*models.Plan, error) {
	plans, err := s.planRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return plans, nil
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, planID primitive.ObjectID) (*models.Subscriber, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	existing, err := s.subscriberRepo.GetActiveByUser(ctx, userID)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}
	if existing != nil {
		if err := s.subscriberRepo.Deactivate(ctx, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to deactivate previous subscription: %w", err)
		}
	}

	now := time.Now()
	subscriber := &models.Subscriber{
		UserID:    userID,
		PlanID:    planID,
		StartDate: now,
		EndDate:   subscriptionEnd(now, plan),
		IsActive:  true,
	}

	if err := s.subscriberRepo.Create(ctx, subscriber); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": userID.Hex(),
		"plan_id": planID.Hex(),
		"plan":    plan.Name,
	}).Info("Subscription activated")

	return subscriber, nil
}

func (s *subscriptionService) GetActiveSubscription(ctx context.Context, userID primitive.ObjectID) (*models.Subscriber, error) {
	return s.subscriberRepo.GetActiveByUser(ctx, userID)
}

func subscriptionEnd(start time.Time, plan *models.Plan) time.Time {
	// A first subscription with trial days runs the trial before billing; the
	// trial window is simply added to the first period.
	end := start
	if plan.TrialDays > 0 {
		end = end.AddDate(0, 0, plan.TrialDays)
	}

	switch plan.BillingCycle {
	case models.BillingCycleYearly:
		return end.AddDate(1, 0, 0)
	default:
		return end.AddDate(0, 1, 0)
	}
}
