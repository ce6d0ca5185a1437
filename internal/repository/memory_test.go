package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateLimitRepository(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemoryRateLimitRepository()
	repo.now = func() time.Time { return clock }

	t.Run("BurstThenDeny", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := repo.CheckRateLimit(ctx, "user:1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed, "request %d", i)
		}
		allowed, err := repo.CheckRateLimit(ctx, "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("Refills", func(t *testing.T) {
		clock = clock.Add(20 * time.Second)
		allowed, err := repo.CheckRateLimit(ctx, "user:1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		allowed, err := repo.CheckRateLimit(ctx, "user:2", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("Disabled", func(t *testing.T) {
		allowed, err := repo.CheckRateLimit(ctx, "user:3", 0, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})
}
