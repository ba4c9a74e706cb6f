package interfaces

import (
	"context"

	"fleetdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error)
	GetByTransporter(ctx context.Context, transporterID primitive.ObjectID) (*models.Company, error)
	GetAll(ctx context.Context) ([]*models.Company, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CompanyStatus, reason string) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}
