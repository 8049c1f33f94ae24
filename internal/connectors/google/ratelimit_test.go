package google

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_WaitWithinBurst(t *testing.T) {
	limiter := NewRateLimiter()

	start := time.Now()
	for i := 0; i < DefaultTasksRateLimit.BurstSize; i++ {
		require.NoError(t, limiter.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), time.Second,
		"a burst within the bucket must not block")
}

func TestRateLimiter_BackoffRespondsToCancellation(t *testing.T) {
	limiter := NewRateLimiter()
	limiter.RecordRateLimitError(30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := limiter.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiter_BackoffDefaultsWhenUnspecified(t *testing.T) {
	limiter := NewRateLimiter()
	limiter.RecordRateLimitError(0)

	// An unspecified Retry-After falls back to a 60 second hold.
	assert.True(t, limiter.retryAt.After(time.Now().Add(50*time.Second)))
	assert.True(t, limiter.retryAt.Before(time.Now().Add(70*time.Second)))
}

func TestRateLimiter_BackoffExpires(t *testing.T) {
	limiter := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})
	limiter.RecordRateLimitError(1)
	limiter.retryAt = time.Now().Add(-time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, limiter.Wait(ctx), "an elapsed backoff must not hold requests")
}
