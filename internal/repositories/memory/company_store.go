// Package memory provides in-memory repository implementations backed by maps.
// They honor the same contracts as the mongodb package, including the
// conditional notification markers, and are used by service tests.
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

type CompanyStore struct {
	mu        sync.RWMutex
	companies map[primitive.ObjectID]*models.Company
}

func NewCompanyStore() *CompanyStore {
	return &CompanyStore{
		companies: make(map[primitive.ObjectID]*models.Company),
	}
}

var _ interfaces.CompanyRepository = (*CompanyStore)(nil)

func (s *CompanyStore) Create(ctx context.Context, company *models.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	company.ID = primitive.NewObjectID()
	company.Status = models.CompanyStatusPending
	company.CreatedAt = time.Now()
	company.UpdatedAt = time.Now()

	clone := *company
	s.companies[company.ID] = &clone

	return nil
}

func (s *CompanyStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	company, ok := s.companies[id]
	if !ok || company.DeletedAt != nil {
		return nil, fmt.Errorf("company %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	clone := *company
	return &clone, nil
}

func (s *CompanyStore) GetByTransporter(ctx context.Context, transporterID primitive.ObjectID) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, company := range s.companies {
		if company.TransporterID == transporterID && company.DeletedAt == nil {
			clone := *company
			return &clone, nil
		}
	}

	return nil, fmt.Errorf("company for transporter %s: %w", transporterID.Hex(), interfaces.ErrNotFound)
}

func (s *CompanyStore) GetAll(ctx context.Context) ([]*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	companies := make([]*models.Company, 0, len(s.companies))
	for _, company := range s.companies {
		if company.DeletedAt != nil {
			continue
		}
		clone := *company
		companies = append(companies, &clone)
	}

	return companies, nil
}

func (s *CompanyStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.CompanyStatus, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	company, ok := s.companies[id]
	if !ok || company.DeletedAt != nil {
		return fmt.Errorf("company %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	company.Status = status
	company.UpdatedAt = time.Now()

	switch status {
	case models.CompanyStatusApproved:
		now := time.Now()
		company.ApprovedAt = &now
		company.RejectionReason = ""
	case models.CompanyStatusRejected:
		company.RejectionReason = reason
	}

	return nil
}

func (s *CompanyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	company, ok := s.companies[id]
	if !ok || company.DeletedAt != nil {
		return nil
	}

	now := time.Now()
	company.DeletedAt = &now
	company.UpdatedAt = now

	return nil
}
