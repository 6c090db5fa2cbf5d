package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/persistence"
)

const eventKeyPrefix = "event:"

// EventCache is a read-through cache for event detail lookups. Misses and
// redis failures are non-fatal; callers always fall back to the repository.
type EventCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewEventCache builds the cache around an existing redis connection.
func NewEventCache(r *persistence.Redis, ttl time.Duration, logger *zap.Logger) *EventCache {
	if r == nil || r.Client == nil {
		return nil
	}
	return &EventCache{client: r.Client, ttl: ttl, logger: logger}
}

// Get returns the cached event or nil on miss.
func (c *EventCache) Get(ctx context.Context, eventID string) *domain.Event {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, eventKeyPrefix+eventID).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("event cache get failed", zap.String("event_id", eventID), zap.Error(err))
		}
		return nil
	}
	var event domain.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil
	}
	return &event
}

// Set stores the event under its id.
func (c *EventCache) Set(ctx context.Context, event *domain.Event) {
	if c == nil || event == nil {
		return
	}
	raw, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, eventKeyPrefix+event.ID, raw, c.ttl).Err(); err != nil {
		c.logger.Debug("event cache set failed", zap.String("event_id", event.ID), zap.Error(err))
	}
}

// Invalidate drops the cached entry after any event mutation.
func (c *EventCache) Invalidate(ctx context.Context, eventID string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, eventKeyPrefix+eventID).Err(); err != nil {
		c.logger.Debug("event cache invalidate failed", zap.String("event_id", eventID), zap.Error(err))
	}
}
