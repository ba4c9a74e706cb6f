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

type companyRepository struct {
	collection *mongo.Collection

	cache services.CacheService
}

func NewCompanyRepository(db *mongo.Database, cache services.CacheService) interfaces.CompanyRepository {
	return &companyRepository{
		collection: db.Collection("companies"),
		cache:      cache,
	}
}

func (r *companyRepository) Create(ctx context.Context, company *models.Company) error {
	company.ID = primitive.NewObjectID()
	company.Status = models.CompanyStatusPending
	company.CreatedAt = time.Now()
	company.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, company)
	if err != nil {
		return fmt.Errorf("failed to create company: %w", err)
	}

	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	if company := r.fromCache(ctx, id); company != nil {
		return company, nil
	}

	var company models.Company
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "deleted_at": nil}).Decode(&company)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("company %s: %w", id.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	r.toCache(ctx, &company)

	return &company, nil
}

func (r *companyRepository) GetByTransporter(ctx context.Context, transporterID primitive.ObjectID) (*models.Company, error) {
	var company models.Company
	err := r.collection.FindOne(ctx, bson.M{"transporter_id": transporterID, "deleted_at": nil}).Decode(&company)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("company for transporter %s: %w", transporterID.Hex(), interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company by transporter: %w", err)
	}

	return &company, nil
}

func (r *companyRepository) GetAll(ctx context.Context) ([]*models.Company, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"deleted_at": nil})
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer cursor.Close(ctx)

	var companies []*models.Company
	if err := cursor.All(ctx, &companies); err != nil {
		return nil, fmt.Errorf("failed to decode companies: %w", err)
	}

	return companies, nil
}

func (r *companyRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CompanyStatus, reason string) error {
	updates := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}

	switch status {
	case models.CompanyStatusApproved:
		updates["approved_at"] = time.Now()
		updates["rejection_reason"] = ""
	case models.CompanyStatusRejected:
		updates["rejection_reason"] = reason
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": updates},
	)
	if err != nil {
		return fmt.Errorf("failed to update company status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("company %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *companyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "deleted_at": nil},
		bson.M{"$set": bson.M{"deleted_at": time.Now(), "updated_at": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete company: %w", err)
	}

	r.invalidate(ctx, id)

	return nil
}

func (r *companyRepository) fromCache(ctx context.Context, id primitive.ObjectID) *models.Company {
	if r.cache == nil {
		return nil
	}

	var company models.Company
	if err := r.cache.Get(ctx, companyCacheKey(id), &company); err != nil {
		return nil
	}
	return &company
}

func (r *companyRepository) toCache(ctx context.Context, company *models.Company) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, companyCacheKey(company.ID), company, 30*time.Minute)
}

func (r *companyRepository) invalidate(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}
	r.cache.Delete(ctx, companyCacheKey(id))
}

func companyCacheKey(id primitive.ObjectID) string {
	return fmt.Sprintf("company_%s", id.Hex())
}
