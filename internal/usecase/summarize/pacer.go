package summarize

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out provider calls. Wait blocks until the next call may start.
type Pacer interface {
	Wait(ctx context.Context) error
}

// RatePacer is a token-bucket Pacer with a burst of one.
type RatePacer struct {
	limiter *rate.Limiter
}

// NewRatePacer allows one call per interval. A non-positive interval never waits.
func NewRatePacer(interval time.Duration) *RatePacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &RatePacer{limiter: rate.NewLimiter(limit, 1)}
}

// Wait implements Pacer.
func (p *RatePacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
