package services

import (
	"context"
	"time"
)

// CacheService is the subset of cache operations the coordinator exercises.
// pkg/cache.RedisCache satisfies it; values are JSON-encoded by the
// implementation. Cached reads are never authoritative — every poll tick
// overwrites them from the store.
type CacheService interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// SetNX backs the short-lived per-driver assignment lock.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
}
