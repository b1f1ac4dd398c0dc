package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// SendLimiter caps outbound email sends with a token bucket.
// Burst equals the rate so no extra burst capacity accumulates beyond the
// configured per-second maximum.
type SendLimiter struct {
	limiter *rate.Limiter
}

// New creates a SendLimiter allowing ratePerSec sends per second.
func New(ratePerSec int) *SendLimiter {
	return &SendLimiter{
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
	}
}

// Wait blocks until a token is available. Called by the consumer loop
// immediately before handing a message to the mailer. Returns a non-nil
// error only if ctx is cancelled while waiting.
func (l *SendLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
