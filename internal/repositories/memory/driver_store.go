package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverStore struct {
	mu      sync.Mutex
	drivers map[primitive.ObjectID]*models.Driver
}

func NewDriverStore() *DriverStore {
	return &DriverStore{
		drivers: make(map[primitive.ObjectID]*models.Driver),
	}
}

var _ interfaces.DriverRepository = (*DriverStore)(nil)

func (s *DriverStore) Create(ctx context.Context, driver *models.Driver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	driver.ID = primitive.NewObjectID()
	driver.CreatedAt = time.Now()
	driver.UpdatedAt = time.Now()

	s.drivers[driver.ID] = cloneDriver(driver)

	return nil
}

func (s *DriverStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	driver, ok := s.drivers[id]
	if !ok || driver.DeletedAt != nil {
		return nil, fmt.Errorf("driver %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	return cloneDriver(driver), nil
}

func (s *DriverStore) GetByCompany(ctx context.Context, companyID primitive.ObjectID) ([]*models.Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var drivers []*models.Driver
	for _, driver := range s.drivers {
		if driver.CompanyID == companyID && driver.DeletedAt == nil {
			drivers = append(drivers, cloneDriver(driver))
		}
	}

	return drivers, nil
}

func (s *DriverStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	driver, ok := s.drivers[id]
	if !ok || driver.DeletedAt != nil {
		return nil
	}

	now := time.Now()
	driver.DeletedAt = &now
	driver.UpdatedAt = now

	return nil
}

func (s *DriverStore) CountByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, driver := range s.drivers {
		if driver.CompanyID == companyID && driver.DeletedAt == nil {
			count++
		}
	}

	return count, nil
}

func (s *DriverStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.DriverStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	driver, ok := s.drivers[id]
	if !ok || driver.DeletedAt != nil {
		return fmt.Errorf("driver %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	driver.Status = status
	driver.SuspensionReason = reason
	driver.UpdatedAt = time.Now()

	return nil
}

func (s *DriverStore) AssignVehicle(ctx context.Context, id primitive.ObjectID, vehicleID *primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	driver, ok := s.drivers[id]
	if !ok || driver.DeletedAt != nil {
		return fmt.Errorf("driver %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	driver.AssignedVehicleID = vehicleID
	driver.UpdatedAt = time.Now()

	return nil
}

func (s *DriverStore) SetDocument(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	driver, ok := s.drivers[id]
	if !ok || driver.DeletedAt != nil {
		return fmt.Errorf("driver %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	clone := cloneDocument(doc)
	switch docType {
	case models.DocumentTypeIDDocument:
		driver.Documents.IDDocument = clone
	case models.DocumentTypeDriverLicense:
		driver.Documents.DriverLicense = clone
	case models.DocumentTypeGoodConductCert:
		driver.Documents.GoodConductCert = clone
	case models.DocumentTypeGoodsServiceLicense:
		driver.Documents.GoodsServiceLicense = clone
	default:
		return fmt.Errorf("unknown document type %q", docType)
	}
	driver.UpdatedAt = time.Now()

	return nil
}

func (s *DriverStore) ApproveDocument(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, verifiedBy primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(id, docType)
	if err != nil {
		return err
	}

	now := time.Now()
	doc.Approved = true
	doc.VerifiedBy = &verifiedBy
	doc.VerifiedAt = &now

	return nil
}

func (s *DriverStore) MarkExpiryNotified(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, days int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(id, docType)
	if err != nil {
		return false, err
	}

	if doc.NotificationHistory.HasExpiringSent(days) {
		return false, nil
	}

	now := time.Now()
	doc.NotificationHistory.ExpiringDaysSent = append(doc.NotificationHistory.ExpiringDaysSent, days)
	doc.NotificationHistory.LastNotifiedAt = &now

	return true, nil
}

func (s *DriverStore) MarkExpiredNotified(ctx context.Context, id primitive.ObjectID, docType models.DocumentType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(id, docType)
	if err != nil {
		return false, err
	}

	if doc.NotificationHistory.ExpiredSent {
		return false, nil
	}

	now := time.Now()
	doc.NotificationHistory.ExpiredSent = true
	doc.NotificationHistory.LastNotifiedAt = &now

	return true, nil
}

func (s *DriverStore) MarkGraceNotified(ctx context.Context, id primitive.ObjectID, docType models.DocumentType, days int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.document(id, docType)
	if err != nil {
		return false, err
	}

	if doc.NotificationHistory.HasGraceSent(days) {
		return false, nil
	}

	now := time.Now()
	doc.NotificationHistory.GraceDaysSent = append(doc.NotificationHistory.GraceDaysSent, days)
	doc.NotificationHistory.LastNotifiedAt = &now

	return true, nil
}

// document returns the stored document, not a copy; callers hold the lock.
func (s *DriverStore) document(id primitive.ObjectID, docType models.DocumentType) (*models.Document, error) {
	driver, ok := s.drivers[id]
	if !ok || driver.DeletedAt != nil {
		return nil, fmt.Errorf("driver %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	docs := driver.Documents.ByType()
	doc, ok := docs[docType]
	if !ok {
		return nil, fmt.Errorf("driver %s document %s: %w", id.Hex(), docType, interfaces.ErrNotFound)
	}

	return doc, nil
}

func cloneDriver(driver *models.Driver) *models.Driver {
	clone := *driver
	clone.Documents = models.DriverDocuments{
		IDDocument:          cloneDocument(driver.Documents.IDDocument),
		DriverLicense:       cloneDocument(driver.Documents.DriverLicense),
		GoodConductCert:     cloneDocument(driver.Documents.GoodConductCert),
		GoodsServiceLicense: cloneDocument(driver.Documents.GoodsServiceLicense),
	}
	return &clone
}

func cloneDocument(doc *models.Document) *models.Document {
	if doc == nil {
		return nil
	}
	clone := *doc
	clone.NotificationHistory.ExpiringDaysSent = append([]int(nil), doc.NotificationHistory.ExpiringDaysSent...)
	clone.NotificationHistory.GraceDaysSent = append([]int(nil), doc.NotificationHistory.GraceDaysSent...)
	return &clone
}
