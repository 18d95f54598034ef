package cache

import (
	"context"
	"time"
)

// Cache is the read-through store for list responses.
// Memory backs single-instance deployments; Redis is shared between replicas.
type Cache interface {
	// Get retrieves a value by key. Returns ErrCacheMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are ignored.
	Delete(ctx context.Context, keys ...string) error

	// GetOrSet retrieves a value or computes and stores it if missing.
	// A computed value is returned but not stored when Delete removed the
	// key while fn ran.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error)

	// Clear removes every entry owned by this cache.
	Clear(ctx context.Context) error

	// Backend names the implementation, for the admin stats endpoint.
	Backend() string

	// Close releases background resources.
	Close() error
}

// CacheError is a sentinel error type for cache lookups.
type CacheError string

func (e CacheError) Error() string { return string(e) }

const (
	// ErrCacheMiss indicates the key was not found in cache.
	ErrCacheMiss CacheError = "cache miss"
)

// Keys shared by the services that fill and invalidate the cache.
const (
	KeyUserList = "users:list"
	KeyGameList = "games:list"
)
