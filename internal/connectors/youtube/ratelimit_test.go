package youtube

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

func TestNewRateLimiter_Defaults(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{})

	assert.InDelta(t, DefaultRequestsPerSecond, float64(r.limiter.Limit()), 1e-9)
	assert.Equal(t, DefaultBurstSize, r.limiter.Burst())
}

func TestRateLimiter_Wait(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 2})

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Wait(context.Background()))
	}
}

func TestRateLimiter_Wait_ContextDeadline(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0.01, BurstSize: 1})
	require.NoError(t, r.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := r.Wait(ctx)

	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestRateLimiter_QuotaBackoff(t *testing.T) {
	var mu sync.Mutex
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})
	r.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	assert.True(t, r.BackoffUntil().IsZero())

	r.RecordQuotaError(0)
	assert.Equal(t, now.Add(DefaultQuotaBackoff), r.BackoffUntil())
	assert.ErrorIs(t, r.Wait(context.Background()), domain.ErrQuotaExceeded)

	mu.Lock()
	now = now.Add(DefaultQuotaBackoff)
	mu.Unlock()

	assert.True(t, r.BackoffUntil().IsZero())
	assert.NoError(t, r.Wait(context.Background()))
}

func TestRateLimiter_RecordQuotaError_CustomDelay(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{})
	before := time.Now()

	r.RecordQuotaError(5 * time.Second)

	until := r.BackoffUntil()
	assert.WithinDuration(t, before.Add(5*time.Second), until, time.Second)
}
