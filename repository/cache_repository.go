package repository

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
	productCachePrefix     = "product:detail:"
	productListCachePrefix = "products:v:"
	cacheVersionKey        = "products:version"

	// DefaultCacheTTL bounds how stale a cached listing can be.
	DefaultCacheTTL = 5 * time.Minute
)

// CacheRepository caches catalog reads in Redis. List keys embed a version
// number; bumping the version invalidates every cached listing at once. A nil
// client disables caching.
type CacheRepository struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCacheRepository creates a CacheRepository.
func NewCacheRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CacheRepository {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CacheRepository{redis: client, ttl: ttl, logger: logger}
}

// Enabled reports whether a Redis client is configured.
func (c *CacheRepository) Enabled() bool {
	return c != nil && c.redis != nil
}

// GetList loads a cached listing stored under the current version.
func (c *CacheRepository) GetList(ctx context.Context, key string, out interface{}) bool {
	if !c.Enabled() {
		return false
	}
	version, err := c.version(ctx)
	if err != nil {
		return false
	}
	return c.get(ctx, c.listKey(version, key), out)
}

// SetList stores a listing under the current version.
func (c *CacheRepository) SetList(ctx context.Context, key string, value interface{}) {
	if !c.Enabled() {
		return
	}
	version, err := c.version(ctx)
	if err != nil {
		return
	}
	c.set(ctx, c.listKey(version, key), value)
}

// GetProduct loads a cached product detail.
func (c *CacheRepository) GetProduct(ctx context.Context, productID string, out interface{}) bool {
	if !c.Enabled() {
		return false
	}
	return c.get(ctx, productCachePrefix+productID, out)
}

// SetProduct caches a product detail.
func (c *CacheRepository) SetProduct(ctx context.Context, productID string, value interface{}) {
	if !c.Enabled() {
		return
	}
	c.set(ctx, productCachePrefix+productID, value)
}

// InvalidateLists bumps the listing version.
func (c *CacheRepository) InvalidateLists(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	newVersion, err := c.redis.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	c.logger.Info("Catalog cache invalidated", zap.Int64("new_version", newVersion))
	return nil
}

func (c *CacheRepository) get(ctx context.Context, key string, out interface{}) bool {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("Failed to unmarshal cached value", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CacheRepository) set(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to marshal value for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write cache", zap.String("key", key), zap.Error(err))
	}
}

func (c *CacheRepository) version(ctx context.Context) (int64, error) {
	ver, err := c.redis.Get(ctx, cacheVersionKey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if errors.Is(err, redis.Nil) {
		if err := c.redis.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.redis.Get(ctx, cacheVersionKey).Int64()
	}
	if err == nil {
		err = fmt.Errorf("invalid cache version %d", ver)
	}
	return 0, err
}

func (c *CacheRepository) listKey(version int64, key string) string {
	return fmt.Sprintf("%s%d:%s", productListCachePrefix, version, key)
}
