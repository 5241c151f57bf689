package runner

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// State is the orchestrator lifecycle position.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCancelled
	StateCompleted
	StateRetryingFailed
	StateRetryCompleted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateCompleted:
		return "completed"
	case StateRetryingFailed:
		return "retrying-failed"
	case StateRetryCompleted:
		return "retry-completed"
	default:
		return "idle"
	}
}

// Summary aggregates one pass. FailedTargets preserves the original
// relative ordering of the pass input. Targets skipped because of
// cancellation are counted in neither bucket, so
// Succeeded + Failed + unprocessed == pass length.
type Summary struct {
	Succeeded     int
	Failed        int
	FailedTargets []Target
	Duration      time.Duration
}

// Report is the outcome of a whole run: the initial pass summary and, when
// the operator confirmed a re-run of failed targets, an independent retry
// pass summary. The two are never merged.
type Report struct {
	RunID     string
	First     Summary
	Retry     *Summary
	Cancelled bool
}

// FinalFailures returns the targets still unresolved after the last pass
// that executed.
func (r Report) FinalFailures() []Target {
	if r.Retry != nil {
		return r.Retry.FailedTargets
	}
	return r.First.FailedTargets
}

// Runner sweeps page targets sequentially, in input order, driving the
// retrying fetcher and the result store and tracking per-pass outcomes.
// A Runner instance owns its counters for the run's lifetime; there is no
// concurrent mutation and no locking.
type Runner struct {
	opt   Options
	fetch *RetryFetcher
	pace  *pacer
	runID string
	state State
}

// New creates a Runner. Options are normalized: a nil Reporter or
// Collector becomes a no-op, and the retry attempt count is raised to at
// least one.
func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{
		opt:   opt,
		fetch: NewRetryFetcher(opt.Fetcher, opt.Retry),
		pace:  newPacer(opt.Interval),
		runID: ulid.Make().String(),
		state: StateIdle,
	}
}

// RunID returns the run's ULID identifier.
func (r *Runner) RunID() string { return r.runID }

// State returns the orchestrator's current lifecycle position.
func (r *Runner) State() State { return r.state }

// Run executes the initial pass over targets and, when failures remain and
// the Confirm callable affirms, a single retry pass over the failed
// targets. The token is observed between targets, between attempts, and
// during every wait; once set, no further remote call is issued.
func (r *Runner) Run(ctx context.Context, targets []Target, token *Token) Report {
	log := r.opt.Logger.With().Str("run_id", r.runID).Logger()

	// Bind the context to the token so in-flight calls and pacing waits
	// unblock as soon as cancellation is requested.
	ctx, unbind := bindToken(ctx, token)
	defer unbind()

	r.state = StateRunning
	log.Info().Int("targets", len(targets)).Msg("starting initial pass")

	report := Report{RunID: r.runID}
	report.First = r.pass(ctx, PassInitial, targets, token, log)

	if token.Cancelled() {
		r.state = StateCancelled
		report.Cancelled = true
		log.Warn().
			Int("succeeded", report.First.Succeeded).
			Int("failed", report.First.Failed).
			Msg("run cancelled")
		return report
	}
	r.state = StateCompleted

	failed := report.First.FailedTargets
	if len(failed) == 0 || r.opt.Confirm == nil || !r.opt.Confirm(len(failed)) {
		return report
	}

	r.state = StateRetryingFailed
	log.Info().Int("targets", len(failed)).Msg("starting retry pass")
	retry := r.pass(ctx, PassRetry, failed, token, log)
	report.Retry = &retry

	if token.Cancelled() {
		r.state = StateCancelled
		report.Cancelled = true
		return report
	}
	r.state = StateRetryCompleted
	return report
}

// pass sweeps targets once, in order. Every target lands in exactly one of
// three buckets: succeeded, failed, or unprocessed due to cancellation.
func (r *Runner) pass(ctx context.Context, pass Pass, targets []Target, token *Token, log zerolog.Logger) Summary {
	start := time.Now()
	var sum Summary

	ctx, span := r.opt.Tracer.Start(ctx, "pagepulse."+pass.String()+" pass")
	defer func() {
		span.SetAttributes(
			attribute.Int("pagepulse.succeeded", sum.Succeeded),
			attribute.Int("pagepulse.failed", sum.Failed),
		)
		span.End()
	}()

	total := len(targets)
	for i, target := range targets {
		if token.Cancelled() {
			break
		}
		if err := r.pace.Wait(ctx); err != nil {
			// Cancelled while pacing; the target was never started.
			break
		}
		if token.Cancelled() {
			break
		}

		fetchStart := time.Now()
		body, err := r.fetch.Fetch(ctx, target, token)
		latency := time.Since(fetchStart)
		r.opt.Collector.Record(latency, err)

		if errors.Is(err, ErrCancelled) {
			break
		}
		if err != nil {
			sum.Failed++
			sum.FailedTargets = append(sum.FailedTargets, target)
			log.Warn().Str("page", target.Label()).Err(err).Msg("page audit failed")
			r.opt.Reporter.PageDone(Outcome{Pass: pass, Index: i + 1, Total: total, Target: target, Err: err, Latency: latency})
			continue
		}

		// Persistence failures are recovered the same way fetch failures
		// are: counted, reported, and the pass continues.
		if err := r.opt.Store.Save(target, body, r.opt.Clock()); err != nil {
			sum.Failed++
			sum.FailedTargets = append(sum.FailedTargets, target)
			log.Error().Str("page", target.Label()).Err(err).Msg("persisting result failed")
			r.opt.Reporter.PageDone(Outcome{Pass: pass, Index: i + 1, Total: total, Target: target, Err: err, Latency: latency})
			continue
		}

		sum.Succeeded++
		log.Debug().Str("page", target.Label()).Dur("latency", latency).Msg("page audit succeeded")
		r.opt.Reporter.PageDone(Outcome{Pass: pass, Index: i + 1, Total: total, Target: target, Latency: latency})
	}

	if token.Cancelled() {
		span.SetStatus(codes.Error, "cancelled")
	}
	sum.Duration = time.Since(start)
	r.opt.Reporter.PassDone(pass, sum)
	return sum
}

// bindToken derives a context that is cancelled when the token is set, so
// context-aware waits and in-flight HTTP calls observe cancellation.
func bindToken(ctx context.Context, token *Token) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	go func() {
		select {
		case <-token.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
