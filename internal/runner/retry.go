package runner

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCancelled reports that a fetch was abandoned because the run's
// cancellation token was set. It is never counted as a page failure.
var ErrCancelled = errors.New("run cancelled")

// ExhaustedError reports that every attempt for one target failed. It
// carries the last underlying error.
type ExhaustedError struct {
	Target   Target
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s: %d attempts failed: %v", e.Target.Label(), e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// RetryPolicy configures the per-target retry loop.
type RetryPolicy struct {
	Attempts int           // total attempts including the initial try
	Delay    time.Duration // fixed wait between attempts
}

func (p *RetryPolicy) normalize() {
	if p.Attempts < 1 {
		p.Attempts = 1
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
}

// RetryFetcher wraps a Fetcher with bounded retry and cooperative
// cancellation. The attempt loop has exactly three exit conditions:
// success, ErrCancelled, or *ExhaustedError. Cancellation is checked
// before each attempt, immediately after a failed attempt, and during the
// inter-attempt wait, so it always wins over a further retry.
//
// No distinction is made between retryable and non-retryable failures; a
// malformed URL burns through the same attempt budget as a flaky network.
type RetryFetcher struct {
	inner  Fetcher
	policy RetryPolicy
}

// NewRetryFetcher wraps fetcher with the given policy. An attempt count
// below one is raised to a single attempt (no retry).
func NewRetryFetcher(fetcher Fetcher, policy RetryPolicy) *RetryFetcher {
	policy.normalize()
	return &RetryFetcher{inner: fetcher, policy: policy}
}

// Fetch runs the attempt loop for one target.
func (r *RetryFetcher) Fetch(ctx context.Context, target Target, token *Token) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.Attempts; attempt++ {
		if token.Cancelled() {
			return nil, ErrCancelled
		}

		body, err := r.inner.Fetch(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err

		// Cancellation beats retry, even with attempts remaining.
		if token.Cancelled() {
			return nil, ErrCancelled
		}

		if attempt < r.policy.Attempts && r.policy.Delay > 0 {
			select {
			case <-time.After(r.policy.Delay):
			case <-token.Done():
				return nil, ErrCancelled
			case <-ctx.Done():
				return nil, ErrCancelled
			}
		}
	}
	return nil, &ExhaustedError{Target: target, Attempts: r.policy.Attempts, Last: lastErr}
}
