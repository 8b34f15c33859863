package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces a strict minimum interval between consecutive
// operations. Unlike a token bucket it never accumulates more than one
// slot, so back-to-back callers are always spaced out: with a 100ms
// interval, ten queued lookups leave the process over at least 900ms.
//
// Metadata lookups share one Pacer so the outbound call rate stays
// polite no matter how many films resolve at once.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer with the given minimum interval between
// operations.
func NewPacer(minInterval time.Duration) *Pacer {
	return &Pacer{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Wait blocks until the caller may proceed or the context is canceled.
// Returns the context's error when canceled, or when the wait would
// outlive the context deadline.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
