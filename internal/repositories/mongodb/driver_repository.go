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

type driverRepository struct {
	collection *mongo.Collection

	cache services.CacheService
}

func NewDriverRepository(db *mongo.Database, cache services.CacheService) interfaces.DriverRepository {
	return &driverRepository{
		collection: db.Collection("drivers"),
		cache:      cache,
	}
}

func (r *driverRepository) Create(ctx context.Context, driver *models.Driver) error {
	driver.ID = primitive.NewObjectID()
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, driver)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}

	return nil
}

func (r *driverRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error) {
	if driver := r.fromCache(ctx, id); driver != nil {
		return driver, nil
	}

	var driver models.Driver
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "deleted_at": nil}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("driver %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}

	r.toCache(ctx, &driver)

	return &driver, nil
}

func (r *driverRepository) GetByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.Driver, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"company_id": companyID, "deleted_at": nil})
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	defer cursor.Close(ctx)

	var drivers []*models.Driver
	if err := cursor.All(ctx, &drivers); err != nil {
		return nil, fmt.Errorf("failed to decode drivers: %w", err)
	}

	return drivers, nil
}

func (r *driverRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": bson.M{"deleted_at": time.Now(), "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete driver: %w", err)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *driverRepository) CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"company_id": companyID, "deleted_at": nil})
	if err != nil {
		return 0, fmt.Errorf("failed to count drivers: %w", err)
	}
	return count, nil
}

func (r *driverRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.DriverStatus, reason string) error {
	updates := bson.M{
		"status":            status,
		"suspension_reason": reason,
		"updated_at":        time.Now(),
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update driver status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("driver %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *driverRepository) AssignVehicle(ctx context.Context, id primitive.ObjectID, vehicleID *primitive.ObjectID) error {
	updates := bson.M{
		"assigned_vehicle_id": vehicleID,
		"updated_at":          time.Now(),
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update driver assignment: %w", err)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *driverRepository) SetDocument(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, doc *models.Document) error {
	updates := bson.M{
		documentField(docType): doc,
		"updated_at":           time.Now(),
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to set driver document: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("driver %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *driverRepository) ApproveDocument(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, verifiedBy primitive.ObjectID) error {
	field := documentField(docType)
	now := time.Now()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil, field: bson.M{"$ne": nil}},
		bson.M{"$set": bson.M{
			field + ".approved":    true,
			field + ".verified_by": verifiedBy,
			field + ".verified_at": now,
			"updated_at":           now,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to approve driver document: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("driver %s document %s: %w", id.Hex(), docType, interfaces.ErrNotFound)
	}

	r.invalidate(ctx, id)

	return nil
}

// MarkExpiryNotified records the warning threshold with a single conditional
// update. The $ne filter makes the write a no-op when the threshold was
// already recorded, so concurrent sweeps cannot both claim the send.
func (r *driverRepository) MarkExpiryNotified(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, days int) (bool, error) {
	history := documentField(docType) + ".notification_history"

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil, history + ".expiring_days_sent": bson.M{"$ne": days}},
		bson.M{
			"$addToSet": bson.M{history + ".expiring_days_sent": days},
			"$set": bson.M{
				history + ".last_notified_at": time.Now(),
				"updated_at":                  time.Now(),
			},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark expiry notified: %w", err)
	}

	r.invalidate(ctx, id)

	return result.ModifiedCount > 0, nil
}

func (r *driverRepository) MarkExpiredNotified(ctx context.Context, id primitive.ObjectID, docType models.DocumentType) (bool, error) {
	history := documentField(docType) + ".notification_history"

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil, history + ".expired_sent": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{
			history + ".expired_sent":     true,
			history + ".last_notified_at": time.Now(),
			"updated_at":                  time.Now(),
		}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark expired notified: %w", err)
	}

	r.invalidate(ctx, id)

	return result.ModifiedCount > 0, nil
}

func (r *driverRepository) MarkGraceNotified(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, days int) (bool, error) {
	history := documentField(docType) + ".notification_history"

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil, history + ".grace_days_sent": bson.M{"$ne": days}},
		bson.M{
			"$addToSet": bson.M{history + ".grace_days_sent": days},
			"$set": bson.M{
				history + ".last_notified_at": time.Now(),
				"updated_at":                  time.Now(),
			},
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark grace notified: %w", err)
	}

	r.invalidate(ctx, id)

	return result.ModifiedCount > 0, nil
}

func (r *driverRepository) fromCache(ctx context.Context, id primitive.ObjectID) *models.Driver {
	if r.cache == nil {
		return nil
	}

	var driver models.Driver
	if err := r.cache.Get(ctx, driverCacheKey(id), &driver); err != nil {
		return nil
	}
	return &driver
}

func (r *driverRepository) toCache(ctx context.Context, driver *models.Driver) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, driverCacheKey(driver.ID), driver, 30*time.Minute)
}

func (r *driverRepository) invalidate(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}
	r.cache.Delete(ctx, driverCacheKey(id))
}

func driverCacheKey(id primitive.ObjectID) string {
	return fmt.Sprintf("driver_%s", id.Hex())
}

func documentField(docType models.DocumentType) string {
	return "documents." + string(docType)
}
