package services

import (
	"context"
	"testing"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/memory"
	"fleetdesk/internal/utils"
	"fleetdesk/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Format: "text"})
	require.NoError(t, err)
	return log
}

type entitlementFixture struct {
	companyRepo    *memory.CompanyStore
	subscriberRepo *memory.SubscriberStore
	planRepo       *memory.PlanStore
	driverRepo     *memory.DriverStore
	vehicleRepo    *memory.VehicleStore
	service        EntitlementService
}

func newEntitlementFixture(t *testing.T) *entitlementFixture {
	t.Helper()

	f := &entitlementFixture{
		companyRepo:    memory.NewCompanyStore(),
		subscriberRepo: memory.NewSubscriberStore(),
		planRepo:       memory.NewPlanStore(),
		driverRepo:     memory.NewDriverStore(),
		vehicleRepo:    memory.NewVehicleStore(),
	}
	f.service = NewEntitlementService(
		f.companyRepo, f.subscriberRepo, f.planRepo, f.driverRepo, f.vehicleRepo, newTestLogger(t),
	)
	return f
}

func (f *entitlementFixture) addCompany(t *testing.T) *models.Company {
	t.Helper()
	company := &models.Company{
		TransporterID: primitive.NewObjectID(),
		Name:          "Acme Transport",
		ContactEmail:  "ops@acme.test",
	}
	require.NoError(t, f.companyRepo.Create(context.Background(), company))
	return company
}

func (f *entitlementFixture) subscribe(t *testing.T, company *models.Company, maxDrivers, maxVehicles int, active bool) {
	t.Helper()
	plan := &models.Plan{
		Name:        "test plan",
		MaxDrivers:  maxDrivers,
		MaxVehicles: maxVehicles,
	}
	require.NoError(t, f.planRepo.Create(context.Background(), plan))

	subscriber := &models.Subscriber{
		UserID:    company.TransporterID,
		PlanID:    plan.ID,
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 1, 0),
		IsActive:  active,
	}
	require.NoError(t, f.subscriberRepo.Create(context.Background(), subscriber))
}

func (f *entitlementFixture) addDrivers(t *testing.T, company *models.Company, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, f.driverRepo.Create(context.Background(), &models.Driver{
			CompanyID: company.ID,
			Name:      "Driver",
			Email:     "driver@acme.test",
		}))
	}
}

func TestCanAddDriverAtLimit(t *testing.T) {
	f := newEntitlementFixture(t)
	company := f.addCompany(t)
	f.subscribe(t, company, 5, 5, true)
	f.addDrivers(t, company, 5)

	decision, err := f.service.CanAdd(context.Background(), ResourceTypeDriver, company.ID)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, utils.ReasonDriverLimitReached, decision.Reason)
	assert.Equal(t, int64(5), decision.CurrentCount)
	assert.Equal(t, int64(5), decision.MaxAllowed)
}

func TestCanAddDriverUnderLimit(t *testing.T) {
	f := newEntitlementFixture(t)
	company := f.addCompany(t)
	f.subscribe(t, company, 5, 5, true)
	f.addDrivers(t, company, 4)

	decision, err := f.service.CanAdd(context.Background(), ResourceTypeDriver, company.ID)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.Reason)
	assert.Equal(t, int64(4), decision.CurrentCount)
}

func TestCanAddDeniedWithoutActiveSubscription(t *testing.T) {
	f := newEntitlementFixture(t)
	company := f.addCompany(t)
	f.subscribe(t, company, 5, 5, false)

	decision, err := f.service.CanAdd(context.Background(), ResourceTypeDriver, company.ID)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, utils.ReasonNoActiveSubscription, decision.Reason)
}

func TestCanAddDeniedWithoutAnySubscription(t *testing.T) {
	f := newEntitlementFixture(t)
	company := f.addCompany(t)

	decision, err := f.service.CanAdd(context.Background(), ResourceTypeVehicle, company.ID)
	require.NoError(t, err)

	assert.False(t, decision.Allowed)
	assert.Equal(t, utils.ReasonNoActiveSubscription, decision.Reason)
}

func TestCanAddUnlimitedPlan(t *testing.T) {
	f := newEntitlementFixture(t)
	company := f.addCompany(t)
	f.subscribe(t, company, models.UnlimitedLimit, models.UnlimitedLimit, true)
	f.addDrivers(t, company, 50)

	decision, err := f.service.CanAdd(context.Background(), ResourceTypeDriver, company.ID)
	require.NoError(t, err)

	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(50), decision.CurrentCount)
	assert.Equal(t, int64(models.UnlimitedLimit), decision.MaxAllowed)
}

func TestCanAddDeletedDriversDoNotCount(t *testing.T) {
	f := newEntitlementFixture(t)
	company := f.addCompany(t)
	f.subscribe(t, company, 2, 2, true)

	first := &models.Driver{CompanyID: company.ID, Name: "A", Email: "a@acme.test"}
	require.NoError(t, f.driverRepo.Create(context.Background(), first))
	f.addDrivers(t, company, 1)

	decision, err := f.service.CanAdd(context.Background(), ResourceTypeDriver, company.ID)
	require.NoError(t, err)
	assert.False(t, decision.Allowed)

	require.NoError(t, f.driverRepo.Delete(context.Background(), first.ID))

	decision, err = f.service.CanAdd(context.Background(), ResourceTypeDriver, company.ID)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)
	assert.Equal(t, int64(1), decision.CurrentCount)
}

func TestCanAddUnknownResource(t *testing.T) {
	f := newEntitlementFixture(t)
	company := f.addCompany(t)

	_, err := f.service.CanAdd(context.Background(), ResourceType("boat"), company.ID)
	assert.Error(t, err)
}

func TestCanAddUnknownCompanyFailsClosed(t *testing.T) {
	f := newEntitlementFixture(t)

	_, err := f.service.CanAdd(context.Background(), ResourceTypeDriver, primitive.NewObjectID())
	assert.Error(t, err)
}
