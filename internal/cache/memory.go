package cache

import (
	"context"
	"sync"
	"time"
)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *cacheEntry) expiredAt(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// version identifies the state of a key between a fill's load and its store.
type version struct {
	epoch uint64
	gen   uint64
}

// MemoryCache is an in-process Cache with periodic eviction of expired entries.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	now     func() time.Time

	// gens counts deletions per key; epoch counts Clear calls.
	gens  map[string]uint64
	epoch uint64

	sweepEvery time.Duration
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewMemoryCache creates a memory cache whose sweeper runs every sweepEvery.
// A non-positive interval defaults to one minute.
func NewMemoryCache(sweepEvery time.Duration) *MemoryCache {
	if sweepEvery <= 0 {
		sweepEvery = time.Minute
	}

	c := &MemoryCache{
		entries:    make(map[string]*cacheEntry),
		gens:       make(map[string]uint64),
		now:        time.Now,
		sweepEvery: sweepEvery,
		stop:       make(chan struct{}),
	}

	go c.sweep()

	return c
}

// Get returns a copy of the cached value.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || entry.expiredAt(c.now()) {
		return nil, ErrCacheMiss
	}

	return append([]byte(nil), entry.value...), nil
}

// Set stores a copy of value.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store(key, value, ttl)
	return nil
}

// store must be called with mu held.
func (c *MemoryCache) store(key string, value []byte, ttl time.Duration) {
	c.entries[key] = &cacheEntry{
		value:     append([]byte(nil), value...),
		expiresAt: c.now().Add(ttl),
	}
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		delete(c.entries, key)
		c.gens[key]++
	}
	return nil
}

// GetOrSet fills key from fn on a miss. The result is not stored when key
// was deleted or the cache cleared while fn ran.
func (c *MemoryCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	c.mu.RLock()
	before := c.version(key)
	entry, ok := c.entries[key]
	if ok && !entry.expiredAt(c.now()) {
		value := append([]byte(nil), entry.value...)
		c.mu.RUnlock()
		return value, nil
	}
	c.mu.RUnlock()

	value, err := fn()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.version(key) == before {
		c.store(key, value, ttl)
	}
	c.mu.Unlock()

	return value, nil
}

// version must be called with mu held.
func (c *MemoryCache) version(key string) version {
	return version{epoch: c.epoch, gen: c.gens[key]}
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*cacheEntry)
	c.epoch++
	return nil
}

func (c *MemoryCache) Backend() string { return "memory" }

// Close stops the sweeper. Safe to call more than once.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

// Len reports the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *MemoryCache) sweep() {
	ticker := time.NewTicker(c.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if entry.expiredAt(now) {
			delete(c.entries, key)
		}
	}
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
