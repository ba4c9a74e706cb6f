package services

import (
	"context"
	"errors"
	"fmt"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/interfaces"
	"fleetdesk/internal/utils"
	"fleetdesk/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ResourceType string

const (
	ResourceTypeDriver  ResourceType = "driver"
	ResourceTypeVehicle ResourceType = "vehicle"
)

// EntitlementDecision is returned to the creation request handlers so the UI
// can render an upgrade prompt on denial.
type EntitlementDecision struct {
	Allowed      bool   `json:"allowed"`
	Reason       string `json:"reason,omitempty"`
	CurrentCount int64  `json:"current_count"`
	MaxAllowed   int64  `json:"max_allowed"`
}

type EntitlementService interface {
	// CanAdd reports whether the company may add another resource of the given
	// type under its subscription plan. Read-only; safe as a request guard.
	CanAdd(ctx context.Context, resourceType ResourceType, companyID primitive.ObjectID) (*EntitlementDecision, error)
}

type entitlementService struct {
	companyRepo    interfaces.CompanyRepository
	subscriberRepo interfaces.SubscriberRepository
	planRepo       interfaces.PlanRepository
	driverRepo     interfaces.DriverRepository
	vehicleRepo    interfaces.VehicleRepository
	logger         *logger.Logger
}

func NewEntitlementService(
	companyRepo interfaces.CompanyRepository,
	subscriberRepo interfaces.SubscriberRepository,
	planRepo interfaces.PlanRepository,
	driverRepo interfaces.DriverRepository,
	vehicleRepo interfaces.VehicleRepository,
	logger *logger.Logger,
) EntitlementService {
	return &entitlementService{
		companyRepo:    companyRepo,
		subscriberRepo: subscriberRepo,
		planRepo:       planRepo,
		driverRepo:     driverRepo,
		vehicleRepo:    vehicleRepo,
		logger:         logger,
	}
}

func (s *entitlementService) CanAdd(ctx context.Context, resourceType ResourceType, companyID primitive.ObjectID) (*EntitlementDecision, error) {
	if resourceType != ResourceTypeDriver && resourceType != ResourceTypeVehicle {
		return nil, fmt.Errorf("unknown resource type %q", resourceType)
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve company: %w", err)
	}

	// Fails closed: no active subscription means no new resources.
	subscriber, err := s.subscriberRepo.GetActiveByUser(ctx, company.TransporterID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return s.deny(company, resourceType, utils.ReasonNoActiveSubscription, 0, 0), nil
		}
		return nil, fmt.Errorf("failed to resolve subscription: %w", err)
	}

	plan, err := s.planRepo.GetByID(ctx, subscriber.PlanID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			s.logger.WithCompanyID(companyID).
				WithField("plan_id", subscriber.PlanID.Hex()).
				Error("Active subscriber references a missing plan")
			return s.deny(company, resourceType, utils.ReasonNoActiveSubscription, 0, 0), nil
		}
		return nil, fmt.Errorf("failed to resolve plan: %w", err)
	}

	var maxAllowed int64
	var currentCount int64
	var limitReason string

	switch resourceType {
	case ResourceTypeDriver:
		maxAllowed = int64(plan.MaxDrivers)
		limitReason = utils.ReasonDriverLimitReached
		currentCount, err = s.driverRepo.CountByCompany(ctx, companyID)
	case ResourceTypeVehicle:
		maxAllowed = int64(plan.MaxVehicles)
		limitReason = utils.ReasonVehicleLimitReached
		currentCount, err = s.vehicleRepo.CountByCompany(ctx, companyID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to count existing %ss: %w", resourceType, err)
	}

	decision := &EntitlementDecision{
		CurrentCount: currentCount,
		MaxAllowed:   maxAllowed,
	}

	if maxAllowed == models.UnlimitedLimit {
		decision.Allowed = true
	} else if currentCount < maxAllowed {
		decision.Allowed = true
	} else {
		decision.Reason = limitReason
	}

	s.logger.LogEntitlementDecision(companyID, string(resourceType), decision.Allowed, currentCount, maxAllowed)

	return decision, nil
}

func (s *entitlementService) deny(company *models.Company, resourceType ResourceType, reason string, currentCount, maxAllowed int64) *EntitlementDecision {
	s.logger.LogEntitlementDecision(company.ID, string(resourceType), false, currentCount, maxAllowed)
	return &EntitlementDecision{
		Allowed:      false,
		Reason:       reason,
		CurrentCount: currentCount,
		MaxAllowed:   maxAllowed,
	}
}
