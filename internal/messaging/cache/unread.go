// Package cache provides the Redis-backed unread badge counter.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unreadTTL bounds staleness when an invalidation is missed.
const unreadTTL = 10 * time.Minute

// ErrMiss is returned when the counter is not cached for the user.
var ErrMiss = errors.New("unread count not cached")

// UnreadCache caches per-user unread message counts in Redis. A nil client
// disables the cache; every read then reports a miss.
type UnreadCache struct {
	client *redis.Client
}

// NewUnreadCache creates the unread counter cache.
func NewUnreadCache(client *redis.Client) *UnreadCache {
	return &UnreadCache{client: client}
}

// Get returns the cached unread count, or ErrMiss when absent.
func (c *UnreadCache) Get(ctx context.Context, userID uuid.UUID) (int, error) {
	if c.client == nil {
		return 0, ErrMiss
	}

	val, err := c.client.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	if err != nil {
		return 0, fmt.Errorf("get unread count: %w", err)
	}

	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, ErrMiss
	}
	return count, nil
}

// Set stores the unread count with the cache TTL.
func (c *UnreadCache) Set(ctx context.Context, userID uuid.UUID, count int) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, key(userID), count, unreadTTL).Err(); err != nil {
		return fmt.Errorf("set unread count: %w", err)
	}
	return nil
}

// Increment bumps the cached count for a newly delivered message. A missing
// key is left missing so the next read repopulates from the database.
func (c *UnreadCache) Increment(ctx context.Context, userID uuid.UUID) error {
	if c.client == nil {
		return nil
	}

	k := key(userID)
	exists, err := c.client.Exists(ctx, k).Result()
	if err != nil {
		return fmt.Errorf("check unread count: %w", err)
	}
	if exists == 0 {
		return nil
	}
	if err := c.client.Incr(ctx, k).Err(); err != nil {
		return fmt.Errorf("increment unread count: %w", err)
	}
	return nil
}

// Invalidate drops the cached count after messages are marked read.
func (c *UnreadCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if c.client == nil {
		return nil
	}
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate unread count: %w", err)
	}
	return nil
}

func key(userID uuid.UUID) string {
	return "messages:unread:" + userID.String()
}
