// Package throttle paces file reads during content searches so a deep scan
// over a network mount or a slow disk does not saturate it.
package throttle

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/k3ss-official/k3ss-search/internal/core/ports/driven"
)

// Ensure Limiter implements the interface.
var _ driven.Throttle = (*Limiter)(nil)

// Limiter is a token bucket shared by every search in the process.
type Limiter struct {
	bucket *rate.Limiter
}

// New creates a limiter allowing readsPerSecond reads with bursts of the
// same size. Zero or a negative rate disables throttling.
func New(readsPerSecond int) *Limiter {
	if readsPerSecond <= 0 {
		return &Limiter{}
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(readsPerSecond), readsPerSecond),
	}
}

// Wait blocks until a read may proceed or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.bucket == nil {
		return ctx.Err()
	}
	return l.bucket.Wait(ctx)
}

// Enabled reports whether reads are being paced.
func (l *Limiter) Enabled() bool {
	return l.bucket != nil
}
