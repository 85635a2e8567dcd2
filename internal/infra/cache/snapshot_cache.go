// Package cache provides an optional Redis-backed cache of player save
// snapshots. The authoritative state lives in the game store; the cache
// only serves read endpoints cheaply and can be disabled entirely.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pokecat-game/pokecat/server/internal/config"
	"github.com/pokecat-game/pokecat/server/internal/game"
	"github.com/pokecat-game/pokecat/server/internal/platform/logger"
)

// SnapshotCache caches serialized save snapshots per player id.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// New connects to Redis per the cache config. Returns nil, nil when the
// cache is disabled; callers treat a nil cache as a pass-through.
func New(ctx context.Context, cfg config.CacheConfig, log *logger.Logger) (*SnapshotCache, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &SnapshotCache{client: client, ttl: cfg.TTL, log: log}, nil
}

func key(playerID string) string {
	return "pokecat:snapshot:" + playerID
}

// Put stores a snapshot under the player id with the configured TTL.
// Cache failures are logged, never surfaced; the store already holds
// the truth.
func (c *SnapshotCache) Put(ctx context.Context, playerID string, snap game.Snapshot) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		c.log.Warn("snapshot cache marshal failed: %v", err)
		return
	}
	if err := c.client.Set(ctx, key(playerID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("snapshot cache write failed: %v", err)
	}
}

// Get fetches a cached snapshot. The second return is false on miss or
// any cache error.
func (c *SnapshotCache) Get(ctx context.Context, playerID string) (game.Snapshot, bool) {
	if c == nil {
		return game.Snapshot{}, false
	}
	raw, err := c.client.Get(ctx, key(playerID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("snapshot cache read failed: %v", err)
		}
		return game.Snapshot{}, false
	}
	var snap game.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return game.Snapshot{}, false
	}
	return snap, true
}

// Invalidate drops the cached snapshot for a player.
func (c *SnapshotCache) Invalidate(ctx context.Context, playerID string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, key(playerID)).Err(); err != nil {
		c.log.Warn("snapshot cache invalidate failed: %v", err)
	}
}

// Close releases the Redis connection.
func (c *SnapshotCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
