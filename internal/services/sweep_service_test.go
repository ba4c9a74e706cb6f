package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/memory"
	"fleetdesk/pkg/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sentNotification struct {
	Kind          models.NotificationKind
	EntityID      primitive.ObjectID
	DocumentType  models.DocumentType
	ThresholdDays int
}

// fakeNotifier records dispatched notifications and can simulate delivery
// failures.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
	fail bool
}

func (f *fakeNotifier) Notify(ctx context.Context, kind models.NotificationKind, event *ComplianceEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return ErrNotificationFailed
	}

	f.sent = append(f.sent, sentNotification{
		Kind:          kind,
		EntityID:      event.EntityID,
		DocumentType:  event.DocumentType,
		ThresholdDays: event.ThresholdDays,
	})
	return nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type sweepFixture struct {
	companyRepo *memory.CompanyStore
	driverRepo  *memory.DriverStore
	vehicleRepo *memory.VehicleStore
	notifier    *fakeNotifier
	service     ComplianceSweepService
}

func newSweepFixture(t *testing.T) *sweepFixture {
	t.Helper()

	f := &sweepFixture{
		companyRepo: memory.NewCompanyStore(),
		driverRepo:  memory.NewDriverStore(),
		vehicleRepo: memory.NewVehicleStore(),
		notifier:    &fakeNotifier{},
	}
	f.service = NewComplianceSweepService(
		f.companyRepo,
		f.driverRepo,
		f.vehicleRepo,
		f.notifier,
		DefaultClassifier(),
		nil,
		newTestLogger(t),
		SweepOptions{},
	)
	return f
}

func (f *sweepFixture) addCompany(t *testing.T) *models.Company {
	t.Helper()
	company := &models.Company{
		TransporterID: primitive.NewObjectID(),
		Name:          "Acme Transport",
		ContactEmail:  "ops@acme.test",
		ContactPhone:  "+15550100",
	}
	require.NoError(t, f.companyRepo.Create(context.Background(), company))
	return company
}

func (f *sweepFixture) addDriver(t *testing.T, company *models.Company, licenseExpiry time.Time) *models.Driver {
	t.Helper()
	driver := &models.Driver{
		CompanyID: company.ID,
		Name:      "Jo Driver",
		Email:     "jo@acme.test",
		Status:    models.DriverStatusApproved,
		Documents: models.DriverDocuments{
			DriverLicense: &models.Document{
				URL:        "https://docs.test/license.pdf",
				ExpiryDate: licenseExpiry,
				Approved:   true,
			},
		},
	}
	require.NoError(t, f.driverRepo.Create(context.Background(), driver))
	return driver
}

func (f *sweepFixture) addVehicle(t *testing.T, company *models.Company, insuranceExpiry time.Time) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{
		CompanyID:    company.ID,
		Registration: "KAA 123X",
		Status:       models.VehicleStatusApproved,
		Availability: true,
		Insurance: &models.Document{
			URL:        "https://docs.test/insurance.pdf",
			ExpiryDate: insuranceExpiry,
			Approved:   true,
		},
	}
	require.NoError(t, f.vehicleRepo.Create(context.Background(), vehicle))
	return vehicle
}

func TestSweepSendsExpiryWarningExactlyOnce(t *testing.T) {
	f := newSweepFixture(t)
	company := f.addCompany(t)
	driver := f.addDriver(t, company, day(7))

	summary, err := f.service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.NotificationsSent)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, models.NotificationKindExpiring, f.notifier.sent[0].Kind)
	assert.Equal(t, driver.ID, f.notifier.sent[0].EntityID)
	assert.Equal(t, models.DocumentTypeDriverLicense, f.notifier.sent[0].DocumentType)
	assert.Equal(t, 7, f.notifier.sent[0].ThresholdDays)

	// Second sweep on the same day is a no-op for this threshold.
	summary, err = f.service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.NotificationsSent)
	assert.Equal(t, 1, f.notifier.sentCount())
}

func TestSweepSeparateThresholdsFireSeparately(t *testing.T) {
	f := newSweepFixture(t)
	company := f.addCompany(t)
	f.addDriver(t, company, day(7))

	_, err := f.service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)

	// Four days later the document is 3 days from expiry, a distinct tier.
	summary, err := f.service.RunSweep(context.Background(), day(4))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.NotificationsSent)
	assert.Equal(t, 2, f.notifier.sentCount())
	assert.Equal(t, 3, f.notifier.sent[1].ThresholdDays)
}

func TestSweepDeactivatesVehiclePastCutoff(t *testing.T) {
	f := newSweepFixture(t)
	company := f.addCompany(t)
	vehicle := f.addVehicle(t, company, day(-31))

	summary, err := f.service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Deactivated)
	assert.Equal(t, 1, summary.NotificationsSent)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, models.NotificationKindDeactivated, f.notifier.sent[0].Kind)

	stored, err := f.vehicleRepo.GetByID(context.Background(), vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleStatusMaintenance, stored.Status)
	assert.False(t, stored.Availability)
	assert.NotEmpty(t, stored.MaintenanceReason)

	// The vehicle is already parked; the next sweep does not re-deactivate.
	summary, err = f.service.RunSweep(context.Background(), day(1))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Deactivated)
}

func TestSweepSuspendsDriverOncePerSweep(t *testing.T) {
	f := newSweepFixture(t)
	company := f.addCompany(t)

	// Two documents both past the cutoff must yield a single suspension.
	driver := &models.Driver{
		CompanyID: company.ID,
		Name:      "Jo Driver",
		Email:     "jo@acme.test",
		Status:    models.DriverStatusApproved,
		Documents: models.DriverDocuments{
			DriverLicense:   &models.Document{ExpiryDate: day(-40), Approved: true},
			GoodConductCert: &models.Document{ExpiryDate: day(-35), Approved: true},
		},
	}
	require.NoError(t, f.driverRepo.Create(context.Background(), driver))

	summary, err := f.service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Deactivated)

	stored, err := f.driverRepo.GetByID(context.Background(), driver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DriverStatusSuspended, stored.Status)
	assert.NotEmpty(t, stored.SuspensionReason)
}

func TestSweepWithholdsMarkerOnNotificationFailure(t *testing.T) {
	f := newSweepFixture(t)
	company := f.addCompany(t)
	f.addDriver(t, company, day(7))

	f.notifier.fail = true
	summary, err := f.service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)

	assert.Equal(t, 0, summary.NotificationsSent)
	require.Len(t, summary.Results, 1)
	assert.Equal(t, 1, summary.Results[0].EntityErrors)

	// Once delivery recovers the same threshold fires.
	f.notifier.fail = false
	summary, err = f.service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NotificationsSent)
}

func TestSweepAggregatesAcrossCompanies(t *testing.T) {
	f := newSweepFixture(t)

	first := f.addCompany(t)
	f.addDriver(t, first, day(7))

	second := f.addCompany(t)
	f.addVehicle(t, second, day(-31))

	summary, err := f.service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)

	assert.Equal(t, 2, summary.CompaniesProcessed)
	assert.Equal(t, 0, summary.FailedCompanies)
	assert.Equal(t, 2, summary.NotificationsSent)
	assert.Equal(t, 1, summary.Deactivated)
}

// failingDriverRepo simulates a store outage for a single company.
type failingDriverRepo struct {
	*memory.DriverStore
	failFor primitive.ObjectID
}

func (r *failingDriverRepo) GetByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.Driver, error) {
	if companyID == r.failFor {
		return nil, errors.New("driver store unavailable")
	}
	return r.DriverStore.GetByCompany(ctx, companyID)
}

func TestSweepIsolatesCompanyFailure(t *testing.T) {
	f := newSweepFixture(t)

	broken := f.addCompany(t)
	healthy := f.addCompany(t)
	f.addDriver(t, healthy, day(7))

	service := NewComplianceSweepService(
		f.companyRepo,
		&failingDriverRepo{DriverStore: f.driverRepo, failFor: broken.ID},
		f.vehicleRepo,
		f.notifier,
		DefaultClassifier(),
		nil,
		newTestLogger(t),
		SweepOptions{},
	)

	summary, err := service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)

	// The broken company is recorded as failed; its sibling is still swept.
	assert.Equal(t, 2, summary.CompaniesProcessed)
	assert.Equal(t, 1, summary.FailedCompanies)
	assert.Equal(t, 1, summary.NotificationsSent)
	assert.Equal(t, 1, f.notifier.sentCount())

	require.Len(t, summary.Results, 2)
	for _, result := range summary.Results {
		if result.CompanyID == broken.ID {
			assert.Contains(t, result.Error, "failed to load drivers")
		} else {
			assert.Empty(t, result.Error)
			assert.Equal(t, 1, result.NotificationsSent)
		}
	}
}

// stubLockCache stands in for redis when only the sweep lock matters.
type stubLockCache struct {
	acquireErr error
}

func (c *stubLockCache) Get(context.Context, string, interface{}) error { return errors.New("miss") }
func (c *stubLockCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (c *stubLockCache) Delete(context.Context, ...string) error { return nil }
func (c *stubLockCache) Exists(context.Context, string) (bool, error) { return false, nil }
func (c *stubLockCache) SetNX(context.Context, string, interface{}, time.Duration) (bool, error) {
	return true, nil
}
func (c *stubLockCache) AcquireLock(ctx context.Context, key string, expiration time.Duration) (*cache.Lock, error) {
	if c.acquireErr != nil {
		return nil, c.acquireErr
	}
	return &cache.Lock{Key: key, Token: "test"}, nil
}
func (c *stubLockCache) ReleaseLock(context.Context, *cache.Lock) error { return nil }
func (c *stubLockCache) Ping(context.Context) error { return nil }

func newLockedSweepService(t *testing.T, f *sweepFixture, lockCache CacheService) ComplianceSweepService {
	t.Helper()
	return NewComplianceSweepService(
		f.companyRepo,
		f.driverRepo,
		f.vehicleRepo,
		f.notifier,
		DefaultClassifier(),
		lockCache,
		newTestLogger(t),
		SweepOptions{},
	)
}

func TestSweepHeldLockReportsAlreadyRunning(t *testing.T) {
	f := newSweepFixture(t)
	f.addCompany(t)

	held := &stubLockCache{acquireErr: fmt.Errorf("lock %s: %w", sweepLockKey, cache.ErrLockHeld)}
	_, err := newLockedSweepService(t, f, held).RunSweep(context.Background(), day(0))
	assert.ErrorIs(t, err, ErrSweepAlreadyRunning)
}

func TestSweepRedisOutageIsNotAlreadyRunning(t *testing.T) {
	f := newSweepFixture(t)
	f.addCompany(t)

	down := &stubLockCache{acquireErr: errors.New("dial tcp 127.0.0.1:6379: connection refused")}
	_, err := newLockedSweepService(t, f, down).RunSweep(context.Background(), day(0))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSweepAlreadyRunning)
}

func TestSweepRunsWithAcquiredLock(t *testing.T) {
	f := newSweepFixture(t)
	company := f.addCompany(t)
	f.addDriver(t, company, day(7))

	summary, err := newLockedSweepService(t, f, &stubLockCache{}).RunSweep(context.Background(), day(0))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NotificationsSent)
}

func TestSweepRenewalResetsHistory(t *testing.T) {
	f := newSweepFixture(t)
	company := f.addCompany(t)
	driver := f.addDriver(t, company, day(-1))

	summary, err := f.service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NotificationsSent)
	assert.Equal(t, models.NotificationKindGracePeriod, f.notifier.sent[0].Kind)

	// Renewal replaces the document wholesale, clearing the dedup history.
	renewed := &models.Document{
		URL:        "https://docs.test/license-v2.pdf",
		ExpiryDate: day(90),
	}
	require.NoError(t, f.driverRepo.SetDocument(context.Background(), driver.ID, models.DocumentTypeDriverLicense, renewed))

	summary, err = f.service.RunSweep(context.Background(), day(1))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.NotificationsSent)
	assert.Equal(t, 1, f.notifier.sentCount())
}

func TestSweepSkipsDocumentsWithoutExpiry(t *testing.T) {
	f := newSweepFixture(t)
	company := f.addCompany(t)

	driver := &models.Driver{
		CompanyID: company.ID,
		Name:      "Jo Driver",
		Email:     "jo@acme.test",
		Status:    models.DriverStatusApproved,
		Documents: models.DriverDocuments{
			IDDocument: &models.Document{URL: "https://docs.test/id.pdf", Approved: true},
		},
	}
	require.NoError(t, f.driverRepo.Create(context.Background(), driver))

	summary, err := f.service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.NotificationsSent)
	assert.Equal(t, 0, summary.Deactivated)
}

func TestSweepExpiredFiresOnce(t *testing.T) {
	f := newSweepFixture(t)
	company := f.addCompany(t)
	f.addVehicle(t, company, day(-2))

	summary, err := f.service.RunSweep(context.Background(), day(0))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.NotificationsSent)
	assert.Equal(t, models.NotificationKindExpired, f.notifier.sent[0].Kind)

	// Days 3..6 past expiry are not grace tiers and expired already fired.
	summary, err = f.service.RunSweep(context.Background(), day(1))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.NotificationsSent)
}
