package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter wraps rate.Limiter with a per-minute configuration surface,
// matching how data-provider quotas are published.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// NewLimiter creates a new rate limiter.
// perMinute specifies the number of requests allowed per minute.
func NewLimiter(name string, perMinute int) *Limiter {
	rps := float64(perMinute) / 60.0

	// Allow a small burst so interactive use isn't paced from the
	// first request, without letting a scan front-load the quota.
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	if burst > 5 {
		burst = 5
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    name,
	}
}

// Wait blocks until a token is available or context is cancelled
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether an event may happen now
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Name returns the limiter name
func (l *Limiter) Name() string {
	return l.name
}
