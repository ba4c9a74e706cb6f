package interfaces

import (
	"context"

	"fleetdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubscriberRepository interface {
	Create(ctx context.Context, subscriber *models.Subscriber) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Subscriber, error)
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.Subscriber, error)
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Plan, error)
	List(ctx context.Context) ([]*models.Plan, error)
}
