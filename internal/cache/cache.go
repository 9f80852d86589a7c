// Package cache provides short-TTL Redis-backed memoization for
// PlayerProjection and AlphaAdjustment values. It is strictly
// ephemeral: a cache miss always falls back to recomputing from C3/C4,
// never to a degraded answer, and nothing here is the canonical
// artifact for PlayerState or feed snapshots (those remain files owned
// by C1/C2).
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ProjectionCache wraps a go-redis client for the two value types
// worth memoizing across repeated decision requests within a request
// burst: per-player alpha adjustments and the blended projections
// built from them.
type ProjectionCache struct {
	client *redis.Client
}

// NewProjectionCache builds a ProjectionCache. A nil client (addr was
// left empty in configuration) is valid — every method becomes a
// guaranteed miss, so callers always recompute.
func NewProjectionCache(client *redis.Client) *ProjectionCache {
	return &ProjectionCache{client: client}
}

func (c *ProjectionCache) set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("set cache key %s: %w", key, err)
	}
	return nil
}

func (c *ProjectionCache) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("get cache key %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("unmarshal cache key %s: %w", key, err)
	}
	return true, nil
}

// ProjectionKey identifies one (league, week, player, config
// fingerprint) projection, so a config change naturally invalidates
// prior entries instead of needing an explicit flush.
func ProjectionKey(leagueID string, week int, playerID, configFingerprint string) string {
	return fmt.Sprintf("projection:%s:%d:%s:%s", leagueID, week, playerID, configFingerprint)
}

// AdjustmentKey identifies one (league, week, player) alpha adjustment,
// keyed independent of the blend config since C3 and C4 are separately
// tunable.
func AdjustmentKey(leagueID string, week int, playerID string) string {
	return fmt.Sprintf("adjustment:%s:%d:%s", leagueID, week, playerID)
}

// SetProjection memoizes a blended projection for ttl.
func (c *ProjectionCache) SetProjection(ctx context.Context, key string, projection domain.PlayerProjection, ttl time.Duration) error {
	return c.set(ctx, key, projection, ttl)
}

// GetProjection returns a memoized projection, reporting whether it
// was found.
func (c *ProjectionCache) GetProjection(ctx context.Context, key string) (domain.PlayerProjection, bool, error) {
	var projection domain.PlayerProjection
	found, err := c.get(ctx, key, &projection)
	return projection, found, err
}

// SetAdjustment memoizes an alpha adjustment for ttl.
func (c *ProjectionCache) SetAdjustment(ctx context.Context, key string, adjustment domain.AlphaAdjustment, ttl time.Duration) error {
	return c.set(ctx, key, adjustment, ttl)
}

// GetAdjustment returns a memoized alpha adjustment, reporting whether
// it was found.
func (c *ProjectionCache) GetAdjustment(ctx context.Context, key string) (domain.AlphaAdjustment, bool, error) {
	var adjustment domain.AlphaAdjustment
	found, err := c.get(ctx, key, &adjustment)
	return adjustment, found, err
}

// Invalidate drops every cached entry for the given keys, used when a
// feed resolution changes underneath a still-fresh TTL (e.g. a
// snapshot correction).
func (c *ProjectionCache) Invalidate(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate cache keys: %w", err)
	}
	return nil
}
