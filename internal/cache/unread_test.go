package cache

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// A nil client means caching is disabled; every call must be a safe no-op
// so the service never has to branch on whether Redis is configured.
func TestUnreadWithoutRedisIsNoop(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	for name, c := range map[string]*Unread{
		"nil receiver": nil,
		"nil client":   NewUnread(nil, zap.NewNop()),
	} {
		t.Run(name, func(t *testing.T) {
			count, ok := c.Get(ctx, userID)
			assert.False(t, ok)
			assert.Zero(t, count)

			c.Set(ctx, userID, 7)
			c.Invalidate(ctx, userID, uuid.New())
			c.Invalidate(ctx)
		})
	}
}

func TestUnreadKey(t *testing.T) {
	id := uuid.MustParse("9f4a1fda-30f1-4b63-9d3c-2f5bd0f2a111")
	assert.Equal(t, "notif:unread:9f4a1fda-30f1-4b63-9d3c-2f5bd0f2a111", unreadKey(id))
}
