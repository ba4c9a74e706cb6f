package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleStore struct {
	mu       sync.Mutex
	vehicles map[primitive.ObjectID]*models.Vehicle
}

func NewVehicleStore() *VehicleStore {
	return &VehicleStore{
		vehicles: make(map[primitive.ObjectID]*models.Vehicle),
	}
}

var _ interfaces.VehicleRepository = (*VehicleStore)(nil)

func (s *VehicleStore) Create(ctx context.Context, vehicle *models.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle.ID = primitive.NewObjectID()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()

	s.vehicles[vehicle.ID] = cloneVehicle(vehicle)

	return nil
}

func (s *VehicleStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[id]
	if !ok || vehicle.DeletedAt != nil {
		return nil, fmt.Errorf("vehicle %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return cloneVehicle(vehicle), nil
}

func (s *VehicleStore) GetByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var vehicles []*models.Vehicle
	for _, vehicle := range s.vehicles {
		if vehicle.CompanyID == companyID && vehicle.DeletedAt == nil {
			vehicles = append(vehicles, cloneVehicle(vehicle))
		}
	}

	return vehicles, nil
}

func (s *VehicleStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[id]
	if !ok || vehicle.DeletedAt != nil {
		return nil
	}

	now := time.Now()
	vehicle.DeletedAt = &now
	vehicle.UpdatedAt = now

	return nil
}

func (s *VehicleStore) CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, vehicle := range s.vehicles {
		if vehicle.CompanyID == companyID && vehicle.DeletedAt == nil {
			count++
		}
	}

	return count, nil
}

func (s *VehicleStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VehicleStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[id]
	if !ok || vehicle.DeletedAt != nil {
		return fmt.Errorf("vehicle %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	vehicle.Status = status
	vehicle.MaintenanceReason = reason
	if status == models.VehicleStatusMaintenance {
		vehicle.Availability = false
	}
	vehicle.UpdatedAt = time.Now()

	return nil
}

func (s *VehicleStore) AssignDriver(ctx context.Context, id primitive.ObjectID, driverID *primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[id]
	if !ok || vehicle.DeletedAt != nil {
		return fmt.Errorf("vehicle %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	vehicle.AssignedDriverID = driverID
	vehicle.UpdatedAt = time.Now()

	return nil
}

func (s *VehicleStore) GetByAssignedDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, vehicle := range s.vehicles {
		if vehicle.DeletedAt != nil || vehicle.AssignedDriverID == nil {
			continue
		}
		if *vehicle.AssignedDriverID == driverID {
			return cloneVehicle(vehicle), nil
		}
	}

	return nil, fmt.Errorf("vehicle for driver %s: %w", driverID.Hex(), interfaces.ErrNotFound)
}

func (s *VehicleStore) SetInsurance(ctx context.Context, id primitive.ObjectID, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.vehicles[id]
	if !ok || vehicle.DeletedAt != nil {
		return fmt.Errorf("vehicle %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	vehicle.Insurance = cloneDocument(doc)
	vehicle.UpdatedAt = time.Now()

	return nil
}

func (s *VehicleStore) ApproveInsurance(ctx context.Context, id primitive.ObjectID, verifiedBy primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.insurance(id)
	if err != nil {
		return err
	}

	now := time.Now()
	doc.Approved = true
	doc.VerifiedBy = &verifiedBy
	doc.VerifiedAt = &now

	return nil
}

func (s *VehicleStore) MarkExpiryNotified(ctx context.Context, id primitive.ObjectID, days int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.insurance(id)
	if err != nil {
		return false, err
	}

	if doc.NotificationHistory.HasExpiringSent(days) {
		return false, nil
	}

	now := time.Now()
	doc.NotificationHistory.ExpiringDaysSent = append(doc.NotificationHistory.ExpiringDaysSent, days)
	doc.NotificationHistory.LastNotifiedAt = &now

	return true, nil
}

func (s *VehicleStore) MarkExpiredNotified(ctx context.Context, id primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.insurance(id)
	if err != nil {
		return false, err
	}

	if doc.NotificationHistory.ExpiredSent {
		return false, nil
	}

	now := time.Now()
	doc.NotificationHistory.ExpiredSent = true
	doc.NotificationHistory.LastNotifiedAt = &now

	return true, nil
}

func (s *VehicleStore) MarkGraceNotified(ctx context.Context, id primitive.ObjectID, days int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.insurance(id)
	if err != nil {
		return false, err
	}

	if doc.NotificationHistory.HasGraceSent(days) {
		return false, nil
	}

	now := time.Now()
	doc.NotificationHistory.GraceDaysSent = append(doc.NotificationHistory.GraceDaysSent, days)
	doc.NotificationHistory.LastNotifiedAt = &now

	return true, nil
}

func (s *VehicleStore) insurance(id primitive.ObjectID) (*models.Document, error) {
	vehicle, ok := s.vehicles[id]
	if !ok || vehicle.DeletedAt != nil {
		return nil, fmt.Errorf("vehicle %s: %w", id.Hex(), interfaces.ErrNotFound)
	}
	if vehicle.Insurance == nil {
		return nil, fmt.Errorf("vehicle %s insurance: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return vehicle.Insurance, nil
}

func cloneVehicle(vehicle *models.Vehicle) *models.Vehicle {
	clone := *vehicle
	clone.Insurance = cloneDocument(vehicle.Insurance)
	return &clone
}
