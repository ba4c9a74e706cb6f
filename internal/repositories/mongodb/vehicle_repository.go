package mongodb

import (
	"context"
	"fmt"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/interfaces"
	"fleetdesk/internal/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const insuranceHistory = "insurance.notification_history"

type vehicleRepository struct {
	collection *mongo.Collection

	cache services.CacheService
}

func NewVehicleRepository(db *mongo.Database, cache services.CacheService) interfaces.VehicleRepository {
	return &vehicleRepository{
		collection: db.Collection("vehicles"),
		cache:      cache,
	}
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	vehicle.ID = primitive.NewObjectID()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, vehicle)
	if err != nil {
		return fmt.Errorf("failed to create vehicle: %w", err)
	}

	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Vehicle, error) {
	if vehicle := r.fromCache(ctx, id); vehicle != nil {
		return vehicle, nil
	}

	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "deleted_at": nil}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("vehicle %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}

	r.toCache(ctx, &vehicle)

	return &vehicle, nil
}

func (r *vehicleRepository) GetByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.Vehicle, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"company_id": companyID, "deleted_at": nil})
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer cursor.Close(ctx)

	var vehicles []*models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}

	return vehicles, nil
}

func (r *vehicleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": bson.M{"deleted_at": time.Now(), "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *vehicleRepository) CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"company_id": companyID, "deleted_at": nil})
	if err != nil {
		return 0, fmt.Errorf("failed to count vehicles: %w", err)
	}
	return count, nil
}

func (r *vehicleRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.VehicleStatus, reason string) error {
	updates := bson.M{
		"status":             status,
		"maintenance_reason": reason,
		"updated_at":         time.Now(),
	}

	// A vehicle pulled into maintenance is no longer dispatchable.
	if status == models.VehicleStatusMaintenance {
		updates["availability"] = false
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update vehicle status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *vehicleRepository) AssignDriver(ctx context.Context, id primitive.ObjectID, driverID *primitive.ObjectID) error {
	updates := bson.M{
		"assigned_driver_id": driverID,
		"updated_at":         time.Now(),
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update vehicle assignment: %w", err)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *vehicleRepository) GetByAssignedDriver(ctx context.Context, driverID primitive.ObjectID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, bson.M{"assigned_driver_id": driverID, "deleted_at": nil}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("vehicle for driver %s: %w", driverID.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get vehicle by driver: %w", err)
	}

	return &vehicle, nil
}

func (r *vehicleRepository) SetInsurance(ctx context.Context, id primitive.ObjectID, doc *models.Document) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": bson.M{"insurance": doc, "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set vehicle insurance: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *vehicleRepository) ApproveInsurance(ctx context.Context, id primitive.ObjectID, verifiedBy primitive.ObjectID) error {
	now := time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil, "insurance": bson.M{"$ne": nil}},
		bson.M{"$set": bson.M{
			"insurance.approved":    true,
			"insurance.verified_by": verifiedBy,
			"insurance.verified_at": now,
			"updated_at":            now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to approve vehicle insurance: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("vehicle %s insurance: %w", id.Hex(), interfaces.ErrNotFound)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *vehicleRepository) MarkExpiryNotified(ctx context.Context, id primitive.ObjectID, days int) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil, insuranceHistory + ".expiring_days_sent": bson.M{"$ne": days}},
		bson.M{
			"$addToSet": bson.M{insuranceHistory + ".expiring_days_sent": days},
			"$set": bson.M{
				insuranceHistory + ".last_notified_at": time.Now(),
				"updated_at":                           time.Now(),
			},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark expiry notified: %w", err)
	}

	r.invalidate(ctx, id)

	return result.ModifiedCount > 0, nil
}

func (r *vehicleRepository) MarkExpiredNotified(ctx context.Context, id primitive.ObjectID) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil, insuranceHistory + ".expired_sent": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{
			insuranceHistory + ".expired_sent":     true,
			insuranceHistory + ".last_notified_at": time.Now(),
			"updated_at":                           time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark expired notified: %w", err)
	}

	r.invalidate(ctx, id)

	return result.ModifiedCount > 0, nil
}

func (r *vehicleRepository) MarkGraceNotified(ctx context.Context, id primitive.ObjectID, days int) (bool, error) {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil, insuranceHistory + ".grace_days_sent": bson.M{"$ne": days}},
		bson.M{
			"$addToSet": bson.M{insuranceHistory + ".grace_days_sent": days},
			"$set": bson.M{
				insuranceHistory + ".last_notified_at": time.Now(),
				"updated_at":                           time.Now(),
			},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark grace notified: %w", err)
	}

	r.invalidate(ctx, id)

	return result.ModifiedCount > 0, nil
}

func (r *vehicleRepository) fromCache(ctx context.Context, id primitive.ObjectID) *models.Vehicle {
	if r.cache == nil {
		return nil
	}

	var vehicle models.Vehicle
	if err := r.cache.Get(ctx, vehicleCacheKey(id), &vehicle); err != nil {
		return nil
	}
	return &vehicle
}

func (r *vehicleRepository) toCache(ctx context.Context, vehicle *models.Vehicle) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, vehicleCacheKey(vehicle.ID), vehicle, 30*time.Minute)
}

func (r *vehicleRepository) invalidate(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}
	r.cache.Delete(ctx, vehicleCacheKey(id))
}

func vehicleCacheKey(id primitive.ObjectID) string {
	return fmt.Sprintf("vehicle_%s", id.Hex())
}
