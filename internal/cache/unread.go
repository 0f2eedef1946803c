package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const unreadTTL = 5 * time.Minute

// Unread caches per-user unread badge counts in Redis. The cache is
// optional: with a nil client every method degrades to a miss/no-op and
// counts come straight from storage.
type Unread struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewUnread(rdb *redis.Client, logger *zap.Logger) *Unread {
	return &Unread{rdb: rdb, logger: logger}
}

func unreadKey(userID uuid.UUID) string {
	return "notif:unread:" + userID.String()
}

// Get returns the cached count and whether it was present.
func (c *Unread) Get(ctx context.Context, userID uuid.UUID) (int, bool) {
	if c == nil || c.rdb == nil {
		return 0, false
	}
	val, err := c.rdb.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("unread cache get failed", zap.Error(err))
		}
		return 0, false
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return count, true
}

// Set stores the count with a short TTL.
func (c *Unread) Set(ctx context.Context, userID uuid.UUID, count int) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, unreadKey(userID), count, unreadTTL).Err(); err != nil {
		c.logger.Debug("unread cache set failed", zap.Error(err))
	}
}

// Invalidate drops the cached counts for the given users. Called whenever
// rows are created or marked read.
func (c *Unread) Invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if c == nil || c.rdb == nil || len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = unreadKey(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Debug("unread cache invalidate failed", zap.Error(err))
	}
}
