package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for RedisCache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisCache is a Cache shared between API replicas. Every key is namespaced
// under KeyPrefix so Clear never touches foreign data.
type RedisCache struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg RedisConfig, logger *slog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     20,
		MinIdleConns: 2,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return newRedisCache(client, cfg.KeyPrefix, logger), nil
}

func newRedisCache(client *redis.Client, prefix string, logger *slog.Logger) *RedisCache {
	if prefix == "" {
		prefix = "erauchess:cache"
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "cache", "backend", "redis")
	logger.Info("redis cache ready", "prefix", prefix)

	return &RedisCache{client: client, prefix: prefix, logger: logger}
}

func (c *RedisCache) key(k string) string {
	return c.prefix + ":" + k
}

// genKey holds the deletion counter for k.
func (c *RedisCache) genKey(k string) string {
	return c.prefix + ":gen:" + k
}

// setIfUnchanged stores ARGV[1] at KEYS[1] only while the counter at KEYS[2]
// still reads ARGV[2]. ARGV[3] is the TTL in milliseconds, 0 for none.
var setIfUnchanged = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or ''
if gen ~= ARGV[2] then
	return 0
end
if ARGV[3] == '0' then
	redis.call('SET', KEYS[1], ARGV[1])
else
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
end
return 1
`)

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, full...)
		for _, k := range keys {
			pipe.Incr(ctx, c.genKey(k))
		}
		return nil
	})
	return err
}

// GetOrSet falls back to fn when Redis is unreachable, so an outage degrades
// to uncached reads instead of failing requests. A fill is dropped when key
// was deleted, on any replica, while fn ran.
func (c *RedisCache) GetOrSet(ctx context.Context, key string, ttl time.Duration, fn func() ([]byte, error)) ([]byte, error) {
	value, err := c.Get(ctx, key)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		return fn()
	}

	gen, err := c.client.Get(ctx, c.genKey(key)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		return fn()
	}

	value, err = fn()
	if err != nil {
		return nil, err
	}

	stored, err := setIfUnchanged.Run(ctx, c.client,
		[]string{c.key(key), c.genKey(key)},
		value, gen, ttl.Milliseconds(),
	).Int()
	switch {
	case err != nil:
		c.logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	case stored == 0:
		c.logger.DebugContext(ctx, "cache fill discarded after invalidation", "key", key)
	}
	return value, nil
}

// Clear deletes every key under the prefix using SCAN, never KEYS.
func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+":*", 100).Iterator()

	batch := make([]string, 0, 100)
	removed := 0
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			removed += len(batch)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return err
		}
		removed += len(batch)
	}

	c.logger.DebugContext(ctx, "cache cleared", "removed", removed)
	return nil
}

func (c *RedisCache) Backend() string { return "redis" }

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ensure RedisCache implements Cache
var _ Cache = (*RedisCache)(nil)
