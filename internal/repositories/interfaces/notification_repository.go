package interfaces

import (
	"context"

	"fleetdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByCompany(ctx context.Context, companyID primitive.ObjectID, limit int64) ([]*models.Notification, error)
	GetByEntity(ctx context.Context, entityID primitive.ObjectID) ([]*models.Notification, error)
}
