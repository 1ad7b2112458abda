package consumer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// IdempotencyGuard Best-effort duplicate suppression for at-least-once
// delivery. Keys are event ids; a key present means the event was already
// applied. Guarding is advisory: handlers must still tolerate the rare
// duplicate that slips through between check and mark.
type IdempotencyGuard interface {
	AlreadyProcessed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, eventID string) error
}

// RedisIdempotencyGuard Redis-backed guard with TTL expiry.
// TTL bounds memory: an event replayed after the window is reprocessed,
// which is safe because handlers are upserts.
type RedisIdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdempotencyGuard Create a guard over the given client
func NewRedisIdempotencyGuard(client *redis.Client, ttl time.Duration) *RedisIdempotencyGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisIdempotencyGuard{client: client, ttl: ttl}
}

func (g *RedisIdempotencyGuard) key(eventID string) string {
	return "tms:consumed:" + eventID
}

// AlreadyProcessed Whether this event id was applied within the TTL window
func (g *RedisIdempotencyGuard) AlreadyProcessed(ctx context.Context, eventID string) (bool, error) {
	count, err := g.client.Exists(ctx, g.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("checking idempotency key: %w", err)
	}
	return count > 0, nil
}

// MarkProcessed Record the event id after the handler succeeded
func (g *RedisIdempotencyGuard) MarkProcessed(ctx context.Context, eventID string) error {
	if err := g.client.SetNX(ctx, g.key(eventID), 1, g.ttl).Err(); err != nil {
		return fmt.Errorf("marking idempotency key: %w", err)
	}
	return nil
}

var _ IdempotencyGuard = (*RedisIdempotencyGuard)(nil)
