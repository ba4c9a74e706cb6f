package interfaces

import (
	"context"

	"fleetdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error)
	GetByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.Vehicle, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Entitlement support; counts live records, never cached
	CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)

	// Status and assignment operations
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VehicleStatus, reason string) error
	AssignDriver(ctx context.Context, id primitive.ObjectID, driverID *primitive.ObjectID) error
	GetByAssignedDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Vehicle, error)

	// Insurance document operations
	SetInsurance(ctx context.Context, id primitive.ObjectID, doc *models.Document) error
	ApproveInsurance(ctx context.Context, id primitive.ObjectID, verifiedBy primitive.ObjectID) error

	// Notification dedup markers, same contract as the driver repository.
	MarkExpiryNotified(ctx context.Context, id primitive.ObjectID, days int) (bool, error)
	MarkExpiredNotified(ctx context.Context, id primitive.ObjectID) (bool, error)
	MarkGraceNotified(ctx context.Context, id primitive.ObjectID, days int) (bool, error)
}
