package cache

import (
	"context"
	"log"
	"os"
	"testing"

	"ticket-ledger/internal/testutil"
	apperrors "ticket-ledger/pkg/app_errors"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRdb *redis.Client

func TestMain(m *testing.M) {
	var cleanup func()
	var err error
	_, testRdb, cleanup, err = testutil.Setup()
	if err != nil {
		log.Fatalf("Failed to set up test environment: %v", err)
	}

	code := m.Run()
	cleanup()
	os.Exit(code)
}

func freshCache(t *testing.T) AvailabilityCache {
	t.Helper()
	require.NoError(t, testRdb.FlushDB(context.Background()).Err())
	return NewAvailabilityCache(testRdb)
}

func TestAvailabilityCache_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - returns the warmed count", func(t *testing.T) {
		c := freshCache(t)

		require.NoError(t, c.Warm(ctx, "alice", 1, 10))

		remaining, err := c.Get(ctx, "alice", 1)
		require.NoError(t, err)
		assert.Equal(t, 10, remaining)
	})

	t.Run("Failed - miss", func(t *testing.T) {
		c := freshCache(t)

		_, err := c.Get(ctx, "alice", 1)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}

func TestAvailabilityCache_Decrement(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - reduces the warmed count", func(t *testing.T) {
		c := freshCache(t)
		require.NoError(t, c.Warm(ctx, "alice", 1, 10))

		require.NoError(t, c.Decrement(ctx, "alice", 1))
		require.NoError(t, c.Decrement(ctx, "alice", 1))

		remaining, err := c.Get(ctx, "alice", 1)
		require.NoError(t, err)
		assert.Equal(t, 8, remaining)
	})

	t.Run("Success - missing entry stays missing", func(t *testing.T) {
		c := freshCache(t)

		// a decrement must not create the key; the next read falls back to
		// the database instead of serving a fabricated count
		require.NoError(t, c.Decrement(ctx, "alice", 1))

		_, err := c.Get(ctx, "alice", 1)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})

	t.Run("Success - scoped to the event", func(t *testing.T) {
		c := freshCache(t)
		require.NoError(t, c.Warm(ctx, "alice", 1, 10))
		require.NoError(t, c.Warm(ctx, "alice", 2, 5))

		require.NoError(t, c.Decrement(ctx, "alice", 1))

		remaining, err := c.Get(ctx, "alice", 2)
		require.NoError(t, err)
		assert.Equal(t, 5, remaining)
	})
}

func TestAvailabilityCache_Invalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - drops the entry", func(t *testing.T) {
		c := freshCache(t)
		require.NoError(t, c.Warm(ctx, "alice", 1, 10))

		require.NoError(t, c.Invalidate(ctx, "alice", 1))

		_, err := c.Get(ctx, "alice", 1)
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}
