// Package services provides external service integrations and technical concerns like notifications and tokens
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/models"
	"github.com/solusaas-git/ovoky-voip-platform-sub001/utils"
)

// RedisRateCache caches rate deck rows in Redis as JSON. Rate decks change
// rarely and are read on every assignment, so a short TTL keeps resolution
// off the database without risking stale pricing for long.
type RedisRateCache struct {
	rc  *redis.Client
	ttl time.Duration
}

// NewRedisRateCache creates a new Redis-backed rate cache
func NewRedisRateCache(rc *redis.Client) *RedisRateCache {
	return &RedisRateCache{rc: rc, ttl: utils.RateCacheTTL}
}

func rateDeckCacheKey(rateDeckID uint) string {
	return fmt.Sprintf("rates:deck:%d", rateDeckID)
}

// GetRates returns the cached rows of one deck. Any cache or decode error
// reads as a miss.
func (c *RedisRateCache) GetRates(ctx context.Context, rateDeckID uint) ([]*models.Rate, bool) {
	if c.rc == nil {
		return nil, false
	}

	bs, err := c.rc.Get(ctx, rateDeckCacheKey(rateDeckID)).Bytes()
	if err != nil || len(bs) == 0 {
		return nil, false
	}

	var rates []*models.Rate
	if err := json.Unmarshal(bs, &rates); err != nil {
		return nil, false
	}
	return rates, true
}

// SetRates stores the rows of one deck with the cache TTL. Failures are
// ignored; the next resolution reads from the database again.
func (c *RedisRateCache) SetRates(ctx context.Context, rateDeckID uint, rates []*models.Rate) {
	if c.rc == nil {
		return
	}

	bs, err := json.Marshal(rates)
	if err != nil {
		return
	}
	_ = c.rc.Set(ctx, rateDeckCacheKey(rateDeckID), bs, c.ttl).Err()
}
