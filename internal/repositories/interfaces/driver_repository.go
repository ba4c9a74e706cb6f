package interfaces

import (
	"context"

	"fleetdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, driver *models.Driver) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error)
	GetByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.Driver, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	// Entitlement support; counts live records, never cached
	CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)

	// Status and assignment operations
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.DriverStatus, reason string) error
	AssignVehicle(ctx context.Context, id primitive.ObjectID, vehicleID *primitive.ObjectID) error

	// Document operations
	SetDocument(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, doc *models.Document) error
	ApproveDocument(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, verifiedBy primitive.ObjectID) error

	// Notification dedup markers. Each returns true only when this call recorded
	// the threshold, so a concurrent sweep cannot double-count a send.
	MarkExpiryNotified(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, days int) (bool, error)
	MarkExpiredNotified(ctx context.Context, id primitive.ObjectID, docType models.DocumentType) (bool, error)
	MarkGraceNotified(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, days int) (bool, error)
}
