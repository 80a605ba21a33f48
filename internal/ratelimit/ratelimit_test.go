package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_CapsPerWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < MaxSends; i++ {
		allowed, err := limiter.Allow(ctx, "1.2.3.4", "9001234567")
		require.NoError(t, err)
		assert.True(t, allowed, "send %d", i+1)
	}

	allowed, err := limiter.Allow(ctx, "1.2.3.4", "9001234567")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestMemoryLimiter_DeniedRequestDoesNotExtendWindow(t *testing.T) {
	base := time.Now()
	current := base
	limiter := NewMemoryLimiterWithClock(func() time.Time { return current })
	ctx := context.Background()

	for i := 0; i < MaxSends; i++ {
		_, err := limiter.Allow(ctx, "1.2.3.4", "9001234567")
		require.NoError(t, err)
	}

	// Hammering while limited must not push the reset out.
	current = base.Add(Window - time.Second)
	allowed, err := limiter.Allow(ctx, "1.2.3.4", "9001234567")
	require.NoError(t, err)
	assert.False(t, allowed)

	current = base.Add(Window)
	allowed, err = limiter.Allow(ctx, "1.2.3.4", "9001234567")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < MaxSends; i++ {
		_, err := limiter.Allow(ctx, "1.2.3.4", "9001234567")
		require.NoError(t, err)
	}

	allowed, err := limiter.Allow(ctx, "1.2.3.4", "9007654321")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "5.6.7.8", "9001234567")
	require.NoError(t, err)
	assert.True(t, allowed)
}
