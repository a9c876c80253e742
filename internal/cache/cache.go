package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const listingPrefix = "challenges"

// DefaultTTL is how long a cached listing page stays valid. Any mutation
// invalidates the whole prefix well before this elapses; the TTL only
// covers invalidation races.
const DefaultTTL = 24 * time.Hour

// ListingCache fronts paginated challenge listings with Redis. Derived data
// only: every caller must behave correctly when the cache is absent.
type ListingCache struct {
	client *redis.Client
}

// New creates a listing cache on top of an existing Redis client
func New(client *redis.Client) *ListingCache {
	return &ListingCache{client: client}
}

// ListingKey builds the deterministic cache key for one listing page
func ListingKey(page, limit int, status string) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("%s:page:%d:limit:%d:status:%s", listingPrefix, page, limit, status)
}

// Get returns the cached value for key and whether it was present
func (c *ListingCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read cache: %w", err)
	}
	return val, true, nil
}

// Set stores a serialized listing page under key with the given TTL
func (c *ListingCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// InvalidateAll deletes every cached listing page. Coarse on purpose: any
// challenge mutation drops all pages and filters rather than tracking which
// keys a write touched.
func (c *ListingCache) InvalidateAll(ctx context.Context) error {
	pattern := listingPrefix + ":*"
	var cursor uint64
	var keysDeleted int

	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan cache keys: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("failed to delete some cache keys", "error", err)
			}
			keysDeleted += len(keys)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	if keysDeleted > 0 {
		slog.Debug("listing cache invalidated", "keys_deleted", keysDeleted)
	}

	return nil
}
