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

type SubscriberStore struct {
	mu          sync.RWMutex
	subscribers map[primitive.ObjectID]*models.Subscriber
}

func NewSubscriberStore() *SubscriberStore {
	return &SubscriberStore{
		subscribers: make(map[primitive.ObjectID]*models.Subscriber),
	}
}

var _ interfaces.SubscriberRepository = (*SubscriberStore)(nil)

func (s *SubscriberStore) Create(ctx context.Context, subscriber *models.Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subscriber.ID = primitive.NewObjectID()
	subscriber.CreatedAt = time.Now()
	subscriber.UpdatedAt = time.Now()

	clone := *subscriber
	s.subscribers[subscriber.ID] = &clone

	return nil
}

func (s *SubscriberStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subscriber, ok := s.subscribers[id]
	if !ok {
		return nil, fmt.Errorf("subscriber %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	clone := *subscriber
	return &clone, nil
}

func (s *SubscriberStore) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*models.Subscriber, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, subscriber := range s.subscribers {
		if subscriber.UserID == userID && subscriber.IsActive {
			clone := *subscriber
			return &clone, nil
		}
	}

	return nil, fmt.Errorf("active subscription for user %s: %w", userID.Hex(), interfaces.ErrNotFound)
}

func (s *SubscriberStore) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	subscriber, ok := s.subscribers[id]
	if !ok {
		return fmt.Errorf("subscriber %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	subscriber.IsActive = false
	subscriber.UpdatedAt = time.Now()

	return nil
}

type PlanStore struct {
	mu    sync.RWMutex
	plans map[primitive.ObjectID]*models.Plan
}

func NewPlanStore() *PlanStore {
	return &PlanStore{
		plans: make(map[primitive.ObjectID]*models.Plan),
	}
}

var _ interfaces.PlanRepository = (*PlanStore)(nil)

func (s *PlanStore) Create(ctx context.Context, plan *models.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = time.Now()

	clone := *plan
	s.plans[plan.ID] = &clone

	return nil
}

func (s *PlanStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plan, ok := s.plans[id]
	if !ok {
		return nil, fmt.Errorf("plan %s: %w", id.Hex(), interfaces.ErrNotFound)
	}

	clone := *plan
	return &clone, nil
}

func (s *PlanStore) List(ctx context.Context) ([]*models.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := make([]*models.Plan, 0, len(s.plans))
	for _, plan := range s.plans {
		clone := *plan
		plans = append(plans, &clone)
	}

	return plans, nil
}
