package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// StatsCacheTTL bounds how stale dashboard numbers may be.
	StatsCacheTTL = time.Minute
)

// Cache holds JSON values for a short time. Failures are logged and treated
// as misses so callers always fall back to the database.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any)
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisCache {
	return &RedisCache{client: client, ttl: ttl, log: log}
}

func (c *RedisCache) Get(ctx context.Context, key string, dest any) bool {
	val, err := c.client.Get(ctx, CacheKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false
	}
	if err != nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		c.log.Warn("cache entry undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *RedisCache) Set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("cache entry unencodable", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, CacheKeyPrefix+key, data, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// CacheKey generates a cache key for a specific resource
func CacheKey(resource string, identifier string) string {
	return fmt.Sprintf("%s:%s", resource, identifier)
}
