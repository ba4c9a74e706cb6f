package memory

import (
	"context"
	"sync"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationStore struct {
	mu            sync.RWMutex
	notifications []*models.Notification
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

var _ interfaces.NotificationRepository = (*NotificationStore)(nil)

func (s *NotificationStore) Create(ctx context.Context, notification *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()

	clone := *notification
	s.notifications = append(s.notifications, &clone)

	return nil
}

func (s *NotificationStore) GetByCompany(ctx context.Context, companyID primitive.ObjectID, limit int64) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var notifications []*models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].CompanyID != companyID {
			continue
		}
		clone := *s.notifications[i]
		notifications = append(notifications, &clone)
		if limit > 0 && int64(len(notifications)) >= limit {
			break
		}
	}

	return notifications, nil
}

func (s *NotificationStore) GetByEntity(ctx context.Context, entityID primitive.ObjectID) ([]*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var notifications []*models.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].EntityID != entityID {
			continue
		}
		clone := *s.notifications[i]
		notifications = append(notifications, &clone)
	}

	return notifications, nil
}
