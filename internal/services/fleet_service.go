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

// FleetService owns the request-path fleet operations: entitlement-gated
// resource creation, driver/vehicle assignment and document renewal.
type FleetService interface {
	CreateDriver(ctx context.Context, driver *models.Driver) (*EntitlementDecision, error)
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*EntitlementDecision, error)

	AssignDriver(ctx context.Context, vehicleID, driverID primitive.ObjectID) error
	UnassignDriver(ctx context.Context, vehicleID primitive.ObjectID) error

	// Renewal resets the document's approval and notification history; this
	// is the only backward transition in the document lifecycle.
	RenewDriverDocument(ctx context.Context, driverID primitive.ObjectID, docType models.DocumentType, url string, expiryDate time.Time) error
	RenewVehicleInsurance(ctx context.Context, vehicleID primitive.ObjectID, url string, expiryDate time.Time) error

	ApproveDriverDocument(ctx context.Context, driverID primitive.ObjectID, docType models.DocumentType, verifiedBy primitive.ObjectID) error
	ApproveVehicleInsurance(ctx context.Context, vehicleID primitive.ObjectID, verifiedBy primitive.ObjectID) error

	ApproveCompany(ctx context.Context, companyID primitive.ObjectID) error
	RejectCompany(ctx context.Context, companyID primitive.ObjectID, reason string) error
}

type fleetService struct {
	companyRepo interfaces.CompanyRepository
	driverRepo  interfaces.DriverRepository
	vehicleRepo interfaces.VehicleRepository
	entitlement EntitlementService
	logger      *logger.Logger
}

func NewFleetService(
	companyRepo interfaces.CompanyRepository,
	driverRepo interfaces.DriverRepository,
	vehicleRepo interfaces.VehicleRepository,
	entitlement EntitlementService,
	logger *logger.Logger,
) FleetService {
	return &fleetService{
		companyRepo: companyRepo,
		driverRepo:  driverRepo,
		vehicleRepo: vehicleRepo,
		entitlement: entitlement,
		logger:      logger,
	}
}

// CreateDriver runs the entitlement check synchronously before the insert.
// Two racing creations can transiently exceed the plan limit by one; the
// check takes no lock, which is accepted for these stakes.
func (s *fleetService) CreateDriver(ctx context.Context, driver *models.Driver) (*EntitlementDecision, error) {
	decision, err := s.entitlement.CanAdd(ctx, ResourceTypeDriver, driver.CompanyID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return decision, ErrEntitlementDenied
	}

	driver.Status = models.DriverStatusPending
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return decision, fmt.Errorf("failed to create driver: %w", err)
	}

	s.logger.WithCompanyID(driver.CompanyID).WithDriverID(driver.ID).Info("Driver created")
	return decision, nil
}

func (s *fleetService) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*EntitlementDecision, error) {
	decision, err := s.entitlement.CanAdd(ctx, ResourceTypeVehicle, vehicle.CompanyID)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return decision, ErrEntitlementDenied
	}

	vehicle.Status = models.VehicleStatusPending
	vehicle.Availability = true
	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return decision, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.logger.WithCompanyID(vehicle.CompanyID).WithVehicleID(vehicle.ID).Info("Vehicle created")
	return decision, nil
}

// AssignDriver enforces the assignment invariants: driver approved with an
// approved license, same company as the vehicle, and at most one vehicle per
// driver.
func (s *fleetService) AssignDriver(ctx context.Context, vehicleID, driverID primitive.ObjectID) error {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to load vehicle: %w", err)
	}

	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return fmt.Errorf("failed to load driver: %w", err)
	}

	if driver.CompanyID != vehicle.CompanyID {
		return ErrCompanyMismatch
	}
	if !driver.CanBeAssigned() {
		return ErrDriverNotAssignable
	}

	existing, err := s.vehicleRepo.GetByAssignedDriver(ctx, driverID)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return fmt.Errorf("failed to check existing assignment: %w", err)
	}
	if existing != nil && existing.ID != vehicleID {
		return ErrDriverAlreadyAssigned
	}

	if err := s.vehicleRepo.AssignDriver(ctx, vehicleID, &driverID); err != nil {
		return fmt.Errorf("failed to assign driver to vehicle: %w", err)
	}
	if err := s.driverRepo.AssignVehicle(ctx, driverID, &vehicleID); err != nil {
		return fmt.Errorf("failed to record driver assignment: %w", err)
	}

	s.logger.WithCompanyID(vehicle.CompanyID).
		WithVehicleID(vehicleID).
		WithDriverID(driverID).
		Info("Driver assigned to vehicle")

	return nil
}

func (s *fleetService) UnassignDriver(ctx context.Context, vehicleID primitive.ObjectID) error {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to load vehicle: %w", err)
	}
	if vehicle.AssignedDriverID == nil {
		return nil
	}

	if err := s.vehicleRepo.AssignDriver(ctx, vehicleID, nil); err != nil {
		return fmt.Errorf("failed to clear vehicle assignment: %w", err)
	}
	if err := s.driverRepo.AssignVehicle(ctx, *vehicle.AssignedDriverID, nil); err != nil {
		return fmt.Errorf("failed to clear driver assignment: %w", err)
	}

	return nil
}

func (s *fleetService) RenewDriverDocument(ctx context.Context, driverID primitive.ObjectID, docType models.DocumentType, url string, expiryDate time.Time) error {
	if _, err := s.driverRepo.GetByID(ctx, driverID); err != nil {
		return fmt.Errorf("failed to load driver: %w", err)
	}

	doc := &models.Document{
		URL:        url,
		ExpiryDate: expiryDate,
		Approved:   false,
	}

	if err := s.driverRepo.SetDocument(ctx, driverID, docType, doc); err != nil {
		return fmt.Errorf("failed to store renewed document: %w", err)
	}

	// Re-upload puts the driver back through verification.
	if err := s.driverRepo.UpdateStatus(ctx, driverID, models.DriverStatusRenewal, ""); err != nil {
		return fmt.Errorf("failed to mark driver for renewal: %w", err)
	}

	s.logger.WithDriverID(driverID).
		WithField("document_type", string(docType)).
		Info("Driver document renewed")

	return nil
}

func (s *fleetService) RenewVehicleInsurance(ctx context.Context, vehicleID primitive.ObjectID, url string, expiryDate time.Time) error {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to load vehicle: %w", err)
	}

	doc := &models.Document{
		URL:        url,
		ExpiryDate: expiryDate,
		Approved:   false,
	}

	if err := s.vehicleRepo.SetInsurance(ctx, vehicleID, doc); err != nil {
		return fmt.Errorf("failed to store renewed insurance: %w", err)
	}

	// A vehicle parked for an expired insurance goes back to pending review.
	if vehicle.Status == models.VehicleStatusMaintenance {
		if err := s.vehicleRepo.UpdateStatus(ctx, vehicleID, models.VehicleStatusPending, ""); err != nil {
			return fmt.Errorf("failed to reset vehicle status: %w", err)
		}
	}

	s.logger.WithVehicleID(vehicleID).Info("Vehicle insurance renewed")
	return nil
}

func (s *fleetService) ApproveDriverDocument(ctx context.Context, driverID primitive.ObjectID, docType models.DocumentType, verifiedBy primitive.ObjectID) error {
	if err := s.driverRepo.ApproveDocument(ctx, driverID, docType, verifiedBy); err != nil {
		return fmt.Errorf("failed to approve document: %w", err)
	}

	// A driver in renewal becomes approved again once all uploaded documents
	// have been verified.
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return fmt.Errorf("failed to reload driver: %w", err)
	}
	if driver.Status == models.DriverStatusRenewal || driver.Status == models.DriverStatusPending {
		if allDocumentsApproved(driver) {
			if err := s.driverRepo.UpdateStatus(ctx, driverID, models.DriverStatusApproved, ""); err != nil {
				return fmt.Errorf("failed to approve driver: %w", err)
			}
		}
	}

	return nil
}

func (s *fleetService) ApproveVehicleInsurance(ctx context.Context, vehicleID primitive.ObjectID, verifiedBy primitive.ObjectID) error {
	if err := s.vehicleRepo.ApproveInsurance(ctx, vehicleID, verifiedBy); err != nil {
		return fmt.Errorf("failed to approve insurance: %w", err)
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return fmt.Errorf("failed to reload vehicle: %w", err)
	}
	if vehicle.Status == models.VehicleStatusPending {
		if err := s.vehicleRepo.UpdateStatus(ctx, vehicleID, models.VehicleStatusApproved, ""); err != nil {
			return fmt.Errorf("failed to approve vehicle: %w", err)
		}
	}

	return nil
}

func (s *fleetService) ApproveCompany(ctx context.Context, companyID primitive.ObjectID) error {
	if err := s.companyRepo.UpdateStatus(ctx, companyID, models.CompanyStatusApproved, ""); err != nil {
		return fmt.Errorf("failed to approve company: %w", err)
	}
	s.logger.WithCompanyID(companyID).Info("Company approved")
	return nil
}

func (s *fleetService) RejectCompany(ctx context.Context, companyID primitive.ObjectID, reason string) error {
	if err := s.companyRepo.UpdateStatus(ctx, companyID, models.CompanyStatusRejected, reason); err != nil {
		return fmt.Errorf("failed to reject company: %w", err)
	}
	s.logger.WithCompanyID(companyID).WithField("reason", reason).Info("Company rejected")
	return nil
}

func allDocumentsApproved(driver *models.Driver) bool {
	docs := driver.Documents.ByType()
	if len(docs) == 0 {
		return false
	}
	for _, doc := range docs {
		if !doc.Approved {
			return false
		}
	}
	return true
}
