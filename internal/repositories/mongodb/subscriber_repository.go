package mongodb

import (
	"context"
	"fmt"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type subscriberRepository struct {
	collection *mongo.Collection
}

func NewSubscriberRepository(db *mongo.Database) interfaces.SubscriberRepository {
	return &subscriberRepository{
		collection: db.Collection("subscribers"),
	}
}

func (r *subscriberRepository) Create(ctx context.Context, subscriber *models.Subscriber) error {
	subscriber.ID = primitive.NewObjectID()
	subscriber.CreatedAt = time.Now()
	subscriber.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, subscriber)
	if err != nil {
		return fmt.Errorf("failed to create subscriber: %w", err)
	}

	return nil
}

func (r *subscriberRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&subscriber)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("subscriber %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}

	return &subscriber, nil
}

func (r *subscriberRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.Subscriber, error) {
	var subscriber models.Subscriber
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "is_active": true}).Decode(&subscriber)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("active subscription for user %s: %w", userID.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}

	return &subscriber, nil
}

func (r *subscriberRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate subscriber: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("subscriber %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return nil
}

type planRepository struct {
	collection *mongo.Collection
}

func NewPlanRepository(db *mongo.Database) interfaces.PlanRepository {
	return &planRepository{
		collection: db.Collection("plans"),
	}
}

func (r *planRepository) Create(ctx context.Context, plan *models.Plan) error {
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return fmt.Errorf("failed to create plan: %w", err)
	}

	return nil
}

func (r *planRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Plan, error) {
	var plan models.Plan
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("plan %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}

	return &plan, nil
}

func (r *planRepository) List(ctx context.Context) ([]*models.Plan, error) {
	opts := options.Find().SetSort(bson.M{"price": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer cursor.Close(ctx)

	var plans []*models.Plan
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("failed to decode plans: %w", err)
	}

	return plans, nil
}
