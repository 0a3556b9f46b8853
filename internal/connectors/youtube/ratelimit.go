package youtube

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/threadsense/internal/core/domain"
)

// Default request pacing. The Data API charges quota per request, so the
// defaults stay well below the per-user limits.
const (
	DefaultRequestsPerSecond = 5.0
	DefaultBurstSize         = 10
	DefaultQuotaBackoff      = 60 * time.Second
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// RateLimiter paces YouTube API requests with a token bucket.
// After a quota error it fails fast until the backoff period has passed,
// since requests are never retried.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a rate limiter. Zero values take the defaults.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = DefaultBurstSize
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		now:     time.Now,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It returns domain.ErrQuotaExceeded while a quota backoff is in effect.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	now := r.now()
	r.mu.Unlock()

	if now.Before(retryAt) {
		return fmt.Errorf("%w: backing off for %s", domain.ErrQuotaExceeded, retryAt.Sub(now).Round(time.Second))
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %w", domain.ErrTimeout, err)
	}
	return nil
}

// RecordQuotaError starts a backoff period. A zero delay takes the default.
func (r *RateLimiter) RecordQuotaError(delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if delay <= 0 {
		delay = DefaultQuotaBackoff
	}
	r.retryAt = r.now().Add(delay)
}

// BackoffUntil returns the end of the current backoff, or zero if none.
func (r *RateLimiter) BackoffUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.now().Before(r.retryAt) {
		return r.retryAt
	}
	return time.Time{}
}
