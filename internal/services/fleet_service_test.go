package services

import (
	"context"
	"testing"

	"fleetdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fleetFixture struct {
	*entitlementFixture
	fleet FleetService
}

func newFleetFixture(t *testing.T) *fleetFixture {
	t.Helper()

	ef := newEntitlementFixture(t)
	return &fleetFixture{
		entitlementFixture: ef,
		fleet:              NewFleetService(ef.companyRepo, ef.driverRepo, ef.vehicleRepo, ef.service, newTestLogger(t)),
	}
}

func (f *fleetFixture) addApprovedDriver(t *testing.T, company *models.Company) *models.Driver {
	t.Helper()
	driver := &models.Driver{
		CompanyID: company.ID,
		Name:      "Jo Driver",
		Email:     "jo@acme.test",
		Status:    models.DriverStatusApproved,
		Documents: models.DriverDocuments{
			DriverLicense: &models.Document{ExpiryDate: day(365), Approved: true},
		},
	}
	require.NoError(t, f.driverRepo.Create(context.Background(), driver))
	return driver
}

func (f *fleetFixture) addVehicle(t *testing.T, company *models.Company) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{
		CompanyID:    company.ID,
		Registration: "KAA 123X",
		Status:       models.VehicleStatusApproved,
		Availability: true,
	}
	require.NoError(t, f.vehicleRepo.Create(context.Background(), vehicle))
	return vehicle
}

func TestCreateDriverDeniedAtPlanLimit(t *testing.T) {
	f := newFleetFixture(t)
	company := f.addCompany(t)
	f.subscribe(t, company, 1, 1, true)
	f.addDrivers(t, company, 1)

	decision, err := f.fleet.CreateDriver(context.Background(), &models.Driver{
		CompanyID: company.ID,
		Name:      "One Too Many",
		Email:     "extra@acme.test",
	})

	assert.ErrorIs(t, err, ErrEntitlementDenied)
	require.NotNil(t, decision)
	assert.False(t, decision.Allowed)

	count, err := f.driverRepo.CountByCompany(context.Background(), company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateDriverStartsPending(t *testing.T) {
	f := newFleetFixture(t)
	company := f.addCompany(t)
	f.subscribe(t, company, 5, 5, true)

	driver := &models.Driver{
		CompanyID: company.ID,
		Name:      "Jo Driver",
		Email:     "jo@acme.test",
		Status:    models.DriverStatusApproved, // caller cannot pre-approve
	}
	decision, err := f.fleet.CreateDriver(context.Background(), driver)
	require.NoError(t, err)
	assert.True(t, decision.Allowed)

	stored, err := f.driverRepo.GetByID(context.Background(), driver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DriverStatusPending, stored.Status)
}

func TestAssignDriverHappyPath(t *testing.T) {
	f := newFleetFixture(t)
	company := f.addCompany(t)
	driver := f.addApprovedDriver(t, company)
	vehicle := f.addVehicle(t, company)

	require.NoError(t, f.fleet.AssignDriver(context.Background(), vehicle.ID, driver.ID))

	storedVehicle, err := f.vehicleRepo.GetByID(context.Background(), vehicle.ID)
	require.NoError(t, err)
	require.NotNil(t, storedVehicle.AssignedDriverID)
	assert.Equal(t, driver.ID, *storedVehicle.AssignedDriverID)

	storedDriver, err := f.driverRepo.GetByID(context.Background(), driver.ID)
	require.NoError(t, err)
	require.NotNil(t, storedDriver.AssignedVehicleID)
	assert.Equal(t, vehicle.ID, *storedDriver.AssignedVehicleID)
}

func TestAssignDriverRejectsCrossCompany(t *testing.T) {
	f := newFleetFixture(t)
	companyA := f.addCompany(t)
	companyB := f.addCompany(t)
	driver := f.addApprovedDriver(t, companyA)
	vehicle := f.addVehicle(t, companyB)

	err := f.fleet.AssignDriver(context.Background(), vehicle.ID, driver.ID)
	assert.ErrorIs(t, err, ErrCompanyMismatch)
}

func TestAssignDriverRequiresApprovedLicense(t *testing.T) {
	f := newFleetFixture(t)
	company := f.addCompany(t)
	vehicle := f.addVehicle(t, company)

	driver := &models.Driver{
		CompanyID: company.ID,
		Name:      "Jo Driver",
		Email:     "jo@acme.test",
		Status:    models.DriverStatusApproved,
		Documents: models.DriverDocuments{
			DriverLicense: &models.Document{ExpiryDate: day(365), Approved: false},
		},
	}
	require.NoError(t, f.driverRepo.Create(context.Background(), driver))

	err := f.fleet.AssignDriver(context.Background(), vehicle.ID, driver.ID)
	assert.ErrorIs(t, err, ErrDriverNotAssignable)
}

func TestAssignDriverEnforcesOneVehiclePerDriver(t *testing.T) {
	f := newFleetFixture(t)
	company := f.addCompany(t)
	driver := f.addApprovedDriver(t, company)
	first := f.addVehicle(t, company)
	second := f.addVehicle(t, company)

	require.NoError(t, f.fleet.AssignDriver(context.Background(), first.ID, driver.ID))

	err := f.fleet.AssignDriver(context.Background(), second.ID, driver.ID)
	assert.ErrorIs(t, err, ErrDriverAlreadyAssigned)

	// Re-assigning to the same vehicle is idempotent.
	assert.NoError(t, f.fleet.AssignDriver(context.Background(), first.ID, driver.ID))
}

func TestUnassignDriverClearsBothSides(t *testing.T) {
	f := newFleetFixture(t)
	company := f.addCompany(t)
	driver := f.addApprovedDriver(t, company)
	vehicle := f.addVehicle(t, company)

	require.NoError(t, f.fleet.AssignDriver(context.Background(), vehicle.ID, driver.ID))
	require.NoError(t, f.fleet.UnassignDriver(context.Background(), vehicle.ID))

	storedVehicle, err := f.vehicleRepo.GetByID(context.Background(), vehicle.ID)
	require.NoError(t, err)
	assert.Nil(t, storedVehicle.AssignedDriverID)

	storedDriver, err := f.driverRepo.GetByID(context.Background(), driver.ID)
	require.NoError(t, err)
	assert.Nil(t, storedDriver.AssignedVehicleID)

	// Unassigning an unassigned vehicle is a no-op.
	assert.NoError(t, f.fleet.UnassignDriver(context.Background(), vehicle.ID))
}

func TestRenewDriverDocumentResetsVerification(t *testing.T) {
	f := newFleetFixture(t)
	company := f.addCompany(t)
	driver := f.addApprovedDriver(t, company)

	err := f.fleet.RenewDriverDocument(context.Background(), driver.ID, models.DocumentTypeDriverLicense,
		"https://docs.test/license-v2.pdf", day(365))
	require.NoError(t, err)

	stored, err := f.driverRepo.GetByID(context.Background(), driver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DriverStatusRenewal, stored.Status)

	doc := stored.Documents.DriverLicense
	require.NotNil(t, doc)
	assert.False(t, doc.Approved)
	assert.Empty(t, doc.NotificationHistory.ExpiringDaysSent)
	assert.False(t, doc.NotificationHistory.ExpiredSent)
}

func TestApproveDriverDocumentRestoresApprovedStatus(t *testing.T) {
	f := newFleetFixture(t)
	company := f.addCompany(t)
	driver := f.addApprovedDriver(t, company)

	require.NoError(t, f.fleet.RenewDriverDocument(context.Background(), driver.ID, models.DocumentTypeDriverLicense,
		"https://docs.test/license-v2.pdf", day(365)))

	admin := primitive.NewObjectID()
	require.NoError(t, f.fleet.ApproveDriverDocument(context.Background(), driver.ID, models.DocumentTypeDriverLicense, admin))

	stored, err := f.driverRepo.GetByID(context.Background(), driver.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DriverStatusApproved, stored.Status)
	assert.True(t, stored.Documents.DriverLicense.Approved)
}

func TestRenewVehicleInsuranceResetsMaintenance(t *testing.T) {
	f := newFleetFixture(t)
	company := f.addCompany(t)

	vehicle := &models.Vehicle{
		CompanyID:    company.ID,
		Registration: "KAA 123X",
		Status:       models.VehicleStatusMaintenance,
		Insurance:    &models.Document{ExpiryDate: day(-40), Approved: true},
	}
	require.NoError(t, f.vehicleRepo.Create(context.Background(), vehicle))

	err := f.fleet.RenewVehicleInsurance(context.Background(), vehicle.ID,
		"https://docs.test/insurance-v2.pdf", day(365))
	require.NoError(t, err)

	stored, err := f.vehicleRepo.GetByID(context.Background(), vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleStatusPending, stored.Status)
	assert.False(t, stored.Insurance.Approved)
	assert.Equal(t, day(365), stored.Insurance.ExpiryDate)
}

func TestApproveVehicleInsurancePromotesPendingVehicle(t *testing.T) {
	f := newFleetFixture(t)
	company := f.addCompany(t)

	vehicle := &models.Vehicle{
		CompanyID:    company.ID,
		Registration: "KAA 123X",
		Status:       models.VehicleStatusPending,
		Insurance:    &models.Document{ExpiryDate: day(365)},
	}
	require.NoError(t, f.vehicleRepo.Create(context.Background(), vehicle))

	require.NoError(t, f.fleet.ApproveVehicleInsurance(context.Background(), vehicle.ID, primitive.NewObjectID()))

	stored, err := f.vehicleRepo.GetByID(context.Background(), vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VehicleStatusApproved, stored.Status)
	assert.True(t, stored.Insurance.Approved)
}

func TestCompanyReviewTransitions(t *testing.T) {
	f := newFleetFixture(t)
	company := f.addCompany(t)

	require.NoError(t, f.fleet.ApproveCompany(context.Background(), company.ID))
	stored, err := f.companyRepo.GetByID(context.Background(), company.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CompanyStatusApproved, stored.Status)
	assert.NotNil(t, stored.ApprovedAt)

	other := f.addCompany(t)
	require.NoError(t, f.fleet.RejectCompany(context.Background(), other.ID, "registration number invalid"))
	stored, err = f.companyRepo.GetByID(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CompanyStatusRejected, stored.Status)
	assert.Equal(t, "registration number invalid", stored.RejectionReason)
}

func TestDriverDocumentsByType(t *testing.T) {
	docs := models.DriverDocuments{
		DriverLicense: &models.Document{ExpiryDate: day(10)},
		IDDocument:    &models.Document{ExpiryDate: day(20)},
	}

	byType := docs.ByType()
	assert.Len(t, byType, 2)
	assert.Contains(t, byType, models.DocumentTypeDriverLicense)
	assert.Contains(t, byType, models.DocumentTypeIDDocument)
	assert.NotContains(t, byType, models.DocumentTypeGoodConductCert)
}
