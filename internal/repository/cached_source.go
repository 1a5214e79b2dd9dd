// internal/repository/cached_source.go
package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"appetite-workers/internal/common/logger"
	"appetite-workers/internal/common/metrics"
	"appetite-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "appetites:product:"

// CachedAppetiteSource serves appetites from Redis and falls back to the wrapped
// source on a miss. Redis failures never fail a lookup.
type CachedAppetiteSource struct {
	next   AppetiteSource
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedAppetiteSource(next AppetiteSource, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *CachedAppetiteSource {
	return &CachedAppetiteSource{next: next, redis: rdb, ttl: ttl, logger: log}
}

// CacheKey returns the Redis key for a product.
func CacheKey(product string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(product))
}

func (c *CachedAppetiteSource) ListByProduct(ctx context.Context, product string) ([]models.UnderwriterAppetite, error) {
	key := CacheKey(product)

	val, err := c.redis.Get(ctx, key).Result()
	switch {
	case err == nil:
		var cached []models.UnderwriterAppetite
		if err := json.Unmarshal([]byte(val), &cached); err == nil {
			metrics.AppetiteCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		c.logger.Warn("discarding unreadable appetite cache entry", map[string]interface{}{"key": key})
		metrics.AppetiteCacheLookups.WithLabelValues("error").Inc()
	case err == redis.Nil:
		metrics.AppetiteCacheLookups.WithLabelValues("miss").Inc()
	default:
		c.logger.Warn("appetite cache read failed", map[string]interface{}{"key": key, "error": err})
		metrics.AppetiteCacheLookups.WithLabelValues("error").Inc()
	}

	appetites, err := c.next.ListByProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(appetites)
	if err != nil {
		return appetites, nil
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("appetite cache write failed", map[string]interface{}{"key": key, "error": err})
	}
	return appetites, nil
}

// Invalidate drops the cached appetites for a product.
func (c *CachedAppetiteSource) Invalidate(ctx context.Context, product string) error {
	return c.redis.Del(ctx, CacheKey(product)).Err()
}
