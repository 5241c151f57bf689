package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer enforces a minimum spacing between page audits. It delegates to a
// rate.Limiter so the first target passes immediately and each subsequent
// target waits out the remainder of the interval.
type pacer struct {
	limiter *rate.Limiter
}

func newPacer(interval time.Duration) *pacer {
	if interval <= 0 {
		return nil
	}
	return &pacer{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next audit may start. It returns the context error
// when cancelled mid-wait.
func (p *pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
