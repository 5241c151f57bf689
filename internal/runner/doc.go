// Package runner provides the audit run orchestration engine for pagepulse.
//
// The runner drives a sequential sweep (a "pass") over a list of page
// targets: each target is fetched through a retrying [Fetcher], persisted
// through a [Store] on success, and accounted into a per-pass [Summary].
// Processing is strictly sequential; the upstream scoring API is rate
// limited per key.
//
// # Basic Usage
//
//	opts := runner.Options{
//		Fetcher: myFetcher,
//		Store:   myStore,
//		Retry:   runner.RetryPolicy{Attempts: 3, Delay: 500 * time.Millisecond},
//		Confirm: func(failed int) bool { return false },
//	}
//	r := runner.New(opts)
//	token := runner.NewToken()
//	report := r.Run(ctx, targets, token)
//
// # Cancellation
//
// A [Token] is a sticky, run-scoped cancellation signal. Once set it is
// observed before every pacing wait, before every fetch attempt, and during
// the inter-attempt delay; no further remote calls are issued in either the
// initial pass or a retry pass. Cancellation always wins over retry: a
// target interrupted by cancellation is not counted as a failure.
//
// # Retry pass
//
// When the initial pass completes (not cancelled) with failures, the
// injected Confirm callable decides whether the failed targets are swept
// again. The retry pass produces its own independent Summary; there is no
// third pass.
package runner
