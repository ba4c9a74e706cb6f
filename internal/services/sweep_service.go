package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/interfaces"
	"fleetdesk/pkg/cache"
	"fleetdesk/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const sweepLockKey = "compliance:sweep:lock"

type SweepSummary struct {
	ReferenceDate      time.Time        `json:"reference_date"`
	StartedAt          time.Time        `json:"started_at"`
	FinishedAt         time.Time        `json:"finished_at"`
	CompaniesProcessed int              `json:"companies_processed"`
	NotificationsSent  int              `json:"notifications_sent"`
	Deactivated        int              `json:"deactivated"`
	FailedCompanies    int              `json:"failed_companies"`
	Results            []*CompanyResult `json:"results"`
}

type CompanyResult struct {
	CompanyID         primitive.ObjectID `json:"company_id"`
	NotificationsSent int                `json:"notifications_sent"`
	Deactivated       int                `json:"deactivated"`
	EntityErrors      int                `json:"entity_errors"`
	Error             string             `json:"error,omitempty"`
}

type SweepOptions struct {
	CompanyTimeout time.Duration
	MaxConcurrent  int
}

// ComplianceSweepService walks every company's drivers and vehicles,
// classifies each regulated document and fires deduplicated notifications,
// eventually suspending non-compliant resources.
type ComplianceSweepService interface {
	RunSweep(ctx context.Context, referenceDate time.Time) (*SweepSummary, error)
}

type complianceSweepService struct {
	companyRepo interfaces.CompanyRepository
	driverRepo  interfaces.DriverRepository
	vehicleRepo interfaces.VehicleRepository
	notifier    NotificationService
	classifier  *Classifier
	cache       CacheService
	logger      *logger.Logger
	opts        SweepOptions
}

func NewComplianceSweepService(
	companyRepo interfaces.CompanyRepository,
	driverRepo interfaces.DriverRepository,
	vehicleRepo interfaces.VehicleRepository,
	notifier NotificationService,
	classifier *Classifier,
	cache CacheService,
	logger *logger.Logger,
	opts SweepOptions,
) ComplianceSweepService {
	if opts.CompanyTimeout <= 0 {
		opts.CompanyTimeout = 2 * time.Minute
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 8
	}

	return &complianceSweepService{
		companyRepo: companyRepo,
		driverRepo:  driverRepo,
		vehicleRepo: vehicleRepo,
		notifier:    notifier,
		classifier:  classifier,
		cache:       cache,
		logger:      logger,
		opts:        opts,
	}
}

func (s *complianceSweepService) RunSweep(ctx context.Context, referenceDate time.Time) (*SweepSummary, error) {
	if referenceDate.IsZero() {
		referenceDate = time.Now()
	}

	// The redis lock keeps an overlapping trigger (double cron fire, manual
	// trigger during a scheduled run) from sweeping concurrently. The
	// per-threshold conditional writes stay correct even without it.
	if s.cache != nil {
		lock, err := s.cache.AcquireLock(ctx, sweepLockKey, time.Hour)
		if err != nil {
			if errors.Is(err, cache.ErrLockHeld) {
				return nil, ErrSweepAlreadyRunning
			}
			return nil, fmt.Errorf("failed to acquire sweep lock: %w", err)
		}
		defer func() {
			if err := s.cache.ReleaseLock(context.Background(), lock); err != nil {
				s.logger.WithError(err).Warn("Failed to release sweep lock")
			}
		}()
	}

	summary := &SweepSummary{
		ReferenceDate: referenceDate,
		StartedAt:     time.Now(),
	}

	companies, err := s.companyRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	// Companies are independent; fan out and collect per-company results.
	// Workers never return an error, so one failure cannot cancel siblings.
	results := make([]*CompanyResult, len(companies))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrent)

	for i, company := range companies {
		i, company := i, company
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, s.opts.CompanyTimeout)
			defer cancel()

			results[i] = s.sweepCompany(cctx, company, referenceDate)
			return nil
		})
	}

	_ = g.Wait()

	summary.FinishedAt = time.Now()
	summary.Results = results
	for _, result := range results {
		summary.CompaniesProcessed++
		summary.NotificationsSent += result.NotificationsSent
		summary.Deactivated += result.Deactivated
		if result.Error != "" {
			summary.FailedCompanies++
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"companies":          summary.CompaniesProcessed,
		"notifications_sent": summary.NotificationsSent,
		"deactivated":        summary.Deactivated,
		"failed_companies":   summary.FailedCompanies,
		"duration_ms":        summary.FinishedAt.Sub(summary.StartedAt).Milliseconds(),
	}).Info("Compliance sweep completed")

	return summary, nil
}

func (s *complianceSweepService) sweepCompany(ctx context.Context, company *models.Company, referenceDate time.Time) *CompanyResult {
	result := &CompanyResult{CompanyID: company.ID}
	log := s.logger.WithCompanyID(company.ID)

	drivers, err := s.driverRepo.GetByCompany(ctx, company.ID)
	if err != nil {
		result.Error = fmt.Sprintf("failed to load drivers: %v", err)
		log.WithError(err).Error("Company sweep aborted")
		return result
	}

	vehicles, err := s.vehicleRepo.GetByCompany(ctx, company.ID)
	if err != nil {
		result.Error = fmt.Sprintf("failed to load vehicles: %v", err)
		log.WithError(err).Error("Company sweep aborted")
		return result
	}

	for _, driver := range drivers {
		if err := s.sweepDriver(ctx, company, driver, referenceDate, result); err != nil {
			result.EntityErrors++
			log.WithError(err).WithDriverID(driver.ID).Warn("Driver document check failed")
		}
	}

	for _, vehicle := range vehicles {
		if err := s.sweepVehicle(ctx, company, vehicle, referenceDate, result); err != nil {
			result.EntityErrors++
			log.WithError(err).WithVehicleID(vehicle.ID).Warn("Vehicle insurance check failed")
		}
	}

	s.logger.LogSweepEvent(company.ID, "company_swept", map[string]interface{}{
		"drivers":            len(drivers),
		"vehicles":           len(vehicles),
		"notifications_sent": result.NotificationsSent,
		"deactivated":        result.Deactivated,
	})

	return result
}

func (s *complianceSweepService) sweepDriver(ctx context.Context, company *models.Company, driver *models.Driver, referenceDate time.Time, result *CompanyResult) error {
	deactivated := driver.Status == models.DriverStatusSuspended

	for docType, doc := range driver.Documents.ByType() {
		if doc.ExpiryDate.IsZero() {
			continue
		}

		stage := s.classifier.Classify(doc.ExpiryDate, referenceDate)
		event := &ComplianceEvent{
			Company:       company,
			EntityType:    models.EntityTypeDriver,
			EntityID:      driver.ID,
			EntityName:    driver.Name,
			DocumentType:  docType,
			ExpiryDate:    doc.ExpiryDate,
			ThresholdDays: stage.Days,
		}

		switch stage.Kind {
		case StageValid:

		case StageExpiringSoon:
			if doc.NotificationHistory.HasExpiringSent(stage.Days) {
				continue
			}
			if err := s.notifier.Notify(ctx, models.NotificationKindExpiring, event); err != nil {
				return err
			}
			recorded, err := s.driverRepo.MarkExpiryNotified(ctx, driver.ID, docType, stage.Days)
			if err != nil {
				return fmt.Errorf("failed to record expiry notification: %w", err)
			}
			if recorded {
				result.NotificationsSent++
			}

		case StageExpired:
			if doc.NotificationHistory.ExpiredSent {
				continue
			}
			if err := s.notifier.Notify(ctx, models.NotificationKindExpired, event); err != nil {
				return err
			}
			recorded, err := s.driverRepo.MarkExpiredNotified(ctx, driver.ID, docType)
			if err != nil {
				return fmt.Errorf("failed to record expired notification: %w", err)
			}
			if recorded {
				result.NotificationsSent++
			}

		case StageGracePeriod:
			if doc.NotificationHistory.HasGraceSent(stage.Days) {
				continue
			}
			if err := s.notifier.Notify(ctx, models.NotificationKindGracePeriod, event); err != nil {
				return err
			}
			recorded, err := s.driverRepo.MarkGraceNotified(ctx, driver.ID, docType, stage.Days)
			if err != nil {
				return fmt.Errorf("failed to record grace notification: %w", err)
			}
			if recorded {
				result.NotificationsSent++
			}

		case StageDeactivatable:
			if deactivated {
				continue
			}
			reason := fmt.Sprintf("%s expired on %s and was not renewed within %d days",
				documentLabel(docType), doc.ExpiryDate.Format("2006-01-02"), s.classifier.DeactivateAfterDays())
			if err := s.driverRepo.UpdateStatus(ctx, driver.ID, models.DriverStatusSuspended, reason); err != nil {
				return fmt.Errorf("failed to suspend driver: %w", err)
			}
			deactivated = true
			result.Deactivated++

			event.Reason = reason
			// Deactivation already took effect; a failed notification is
			// logged but does not roll anything back.
			if err := s.notifier.Notify(ctx, models.NotificationKindDeactivated, event); err != nil {
				s.logger.WithError(err).WithDriverID(driver.ID).Warn("Deactivation notification failed")
			} else {
				result.NotificationsSent++
			}
		}
	}

	return nil
}

func (s *complianceSweepService) sweepVehicle(ctx context.Context, company *models.Company, vehicle *models.Vehicle, referenceDate time.Time, result *CompanyResult) error {
	doc := vehicle.Insurance
	if doc == nil || doc.ExpiryDate.IsZero() {
		return nil
	}

	stage := s.classifier.Classify(doc.ExpiryDate, referenceDate)
	event := &ComplianceEvent{
		Company:       company,
		EntityType:    models.EntityTypeVehicle,
		EntityID:      vehicle.ID,
		EntityName:    vehicle.Registration,
		DocumentType:  models.DocumentTypeInsurance,
		ExpiryDate:    doc.ExpiryDate,
		ThresholdDays: stage.Days,
	}

	switch stage.Kind {
	case StageValid:
		return nil

	case StageExpiringSoon:
		if doc.NotificationHistory.HasExpiringSent(stage.Days) {
			return nil
		}
		if err := s.notifier.Notify(ctx, models.NotificationKindExpiring, event); err != nil {
			return err
		}
		recorded, err := s.vehicleRepo.MarkExpiryNotified(ctx, vehicle.ID, stage.Days)
		if err != nil {
			return fmt.Errorf("failed to record expiry notification: %w", err)
		}
		if recorded {
			result.NotificationsSent++
		}

	case StageExpired:
		if doc.NotificationHistory.ExpiredSent {
			return nil
		}
		if err := s.notifier.Notify(ctx, models.NotificationKindExpired, event); err != nil {
			return err
		}
		recorded, err := s.vehicleRepo.MarkExpiredNotified(ctx, vehicle.ID)
		if err != nil {
			return fmt.Errorf("failed to record expired notification: %w", err)
		}
		if recorded {
			result.NotificationsSent++
		}

	case StageGracePeriod:
		if doc.NotificationHistory.HasGraceSent(stage.Days) {
			return nil
		}
		if err := s.notifier.Notify(ctx, models.NotificationKindGracePeriod, event); err != nil {
			return err
		}
		recorded, err := s.vehicleRepo.MarkGraceNotified(ctx, vehicle.ID, stage.Days)
		if err != nil {
			return fmt.Errorf("failed to record grace notification: %w", err)
		}
		if recorded {
			result.NotificationsSent++
		}

	case StageDeactivatable:
		if vehicle.Status == models.VehicleStatusMaintenance {
			return nil
		}
		reason := fmt.Sprintf("insurance certificate expired on %s and was not renewed within %d days",
			doc.ExpiryDate.Format("2006-01-02"), s.classifier.DeactivateAfterDays())
		if err := s.vehicleRepo.UpdateStatus(ctx, vehicle.ID, models.VehicleStatusMaintenance, reason); err != nil {
			return fmt.Errorf("failed to move vehicle to maintenance: %w", err)
		}
		result.Deactivated++

		event.Reason = reason
		if err := s.notifier.Notify(ctx, models.NotificationKindDeactivated, event); err != nil {
			s.logger.WithError(err).WithVehicleID(vehicle.ID).Warn("Deactivation notification failed")
		} else {
			result.NotificationsSent++
		}
	}

	return nil
}
