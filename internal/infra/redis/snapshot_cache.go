package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thomasfevre/chill-split/internal/platform/group"
	"github.com/thomasfevre/chill-split/pkg/logger"
)

const (
	// DefaultTTL keeps snapshots fresh enough that validations and new
	// expenses show up within a minute without re-reading the chain on
	// every request
	DefaultTTL = 60 * time.Second

	// KeyPrefix is the prefix for snapshot cache keys
	KeyPrefix = "groups:"
)

// SnapshotCache is a Redis-backed cache of decoded group snapshots,
// keyed by user address
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logger.Logger
}

// NewSnapshotCache creates a snapshot cache with the default TTL
func NewSnapshotCache(client *redis.Client, log *logger.Logger) *SnapshotCache {
	return NewSnapshotCacheWithTTL(client, DefaultTTL, log)
}

// NewSnapshotCacheWithTTL creates a snapshot cache with a custom TTL
func NewSnapshotCacheWithTTL(client *redis.Client, ttl time.Duration, log *logger.Logger) *SnapshotCache {
	return &SnapshotCache{
		client: client,
		ttl:    ttl,
		logger: log.WithField("component", "snapshot_cache"),
	}
}

// cachedSnapshot wraps the group list with the fetch time for debugging
type cachedSnapshot struct {
	Groups    []group.Group `json:"groups"`
	FetchedAt time.Time     `json:"fetched_at"`
}

func (c *SnapshotCache) key(userAddress string) string {
	return KeyPrefix + group.NormalizeAddress(userAddress)
}

// Get retrieves the cached snapshot list for a user
func (c *SnapshotCache) Get(ctx context.Context, userAddress string) ([]group.Group, bool, error) {
	key := c.key(userAddress)

	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.logger.Debug("cache miss", "user", group.ShortenAddress(userAddress))
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("cache error", "operation", "get", "error", err)
		return nil, false, fmt.Errorf("failed to get cached snapshot: %w", err)
	}

	var cached cachedSnapshot
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}

	c.logger.Debug("cache hit", "user", group.ShortenAddress(userAddress), "groups", len(cached.Groups))
	return cached.Groups, true, nil
}

// Set replaces the cached snapshot list for a user
func (c *SnapshotCache) Set(ctx context.Context, userAddress string, groups []group.Group) error {
	cached := cachedSnapshot{
		Groups:    groups,
		FetchedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := c.client.Set(ctx, c.key(userAddress), data, c.ttl).Err(); err != nil {
		c.logger.Error("cache error", "operation", "set", "error", err)
		return fmt.Errorf("failed to set cached snapshot: %w", err)
	}

	return nil
}

// Invalidate drops the cached snapshot list for a user
func (c *SnapshotCache) Invalidate(ctx context.Context, userAddress string) error {
	return c.client.Del(ctx, c.key(userAddress)).Err()
}
