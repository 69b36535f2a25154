package cache

import (
	"context"
	"fmt"
	"time"

	"ticket-ledger/internal/model"
	apperrors "ticket-ledger/pkg/app_errors"

	"github.com/redis/go-redis/v9"
)

// AvailabilityCache serves the remaining-capacity read path from Redis. It is
// advisory: the locked event row inside the purchase transaction is the
// authority, and the cache is refreshed after commit.
type AvailabilityCache interface {
	// Warm stores the remaining capacity for an event.
	Warm(ctx context.Context, organizer model.Identity, eventID int64, remaining int) error
	// Get returns the cached remaining capacity; ErrEventNotFound on miss.
	Get(ctx context.Context, organizer model.Identity, eventID int64) (int, error)
	// Decrement reduces the cached count by one if the entry exists.
	Decrement(ctx context.Context, organizer model.Identity, eventID int64) error
	// Invalidate drops the entry, forcing the next read back to the database.
	Invalidate(ctx context.Context, organizer model.Identity, eventID int64) error
}

type AvailabilityCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityCache(client *redis.Client) AvailabilityCache {
	return &AvailabilityCacheImpl{
		client: client,
		ttl:    time.Hour,
	}
}

func (c *AvailabilityCacheImpl) key(organizer model.Identity, eventID int64) string {
	return fmt.Sprintf("event:%s:%d:availability", organizer, eventID)
}

func (c *AvailabilityCacheImpl) Warm(ctx context.Context, organizer model.Identity, eventID int64, remaining int) error {
	return c.client.Set(ctx, c.key(organizer, eventID), remaining, c.ttl).Err()
}

func (c *AvailabilityCacheImpl) Get(ctx context.Context, organizer model.Identity, eventID int64) (int, error) {
	val, err := c.client.Get(ctx, c.key(organizer, eventID)).Int()
	if err == redis.Nil {
		return -1, apperrors.ErrEventNotFound
	}
	return val, err
}

// Decrement is commutative across concurrent buyers, so commit order cannot
// leave the count stale the way racing absolute writes could. A missing key
// stays missing; the next read falls back to the database and re-warms.
func (c *AvailabilityCacheImpl) Decrement(ctx context.Context, organizer model.Identity, eventID int64) error {
	script := `
		if redis.call('EXISTS', KEYS[1]) == 1 then
			return redis.call('DECR', KEYS[1])
		end
		return -1
	`
	return c.client.Eval(ctx, script, []string{c.key(organizer, eventID)}).Err()
}

func (c *AvailabilityCacheImpl) Invalidate(ctx context.Context, organizer model.Identity, eventID int64) error {
	return c.client.Del(ctx, c.key(organizer, eventID)).Err()
}
