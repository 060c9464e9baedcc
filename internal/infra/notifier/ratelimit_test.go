package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BurstPassesImmediately(t *testing.T) {
	limiter := NewRateLimiter(1.0, 3)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Allow(context.Background()))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond, "burst tokens should not block")
}

func TestRateLimiter_BlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(10.0, 1) // refill every 100ms

	require.NoError(t, limiter.Allow(context.Background()))

	start := time.Now()
	require.NoError(t, limiter.Allow(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond, "second call should wait for a refill")
}

func TestRateLimiter_ContextCancellation(t *testing.T) {
	limiter := NewRateLimiter(0.1, 1) // next token 10s away

	require.NoError(t, limiter.Allow(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := limiter.Allow(ctx)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "should give up at the deadline, not wait for a token")
}
