package services

import (
	"context"
	"time"

	"fleetdesk/pkg/cache"
)

// CacheService is the subset of the redis cache the services and repositories
// use. Entity lookups may be cached; live entitlement counts never are.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	AcquireLock(ctx context.Context, key string, expiration time.Duration) (*cache.Lock, error)
	ReleaseLock(ctx context.Context, lock *cache.Lock) error
	Ping(ctx context.Context) error
}
