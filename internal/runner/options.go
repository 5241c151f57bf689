package runner

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Target identifies one page to be audited. Immutable once parsed.
type Target struct {
	Context string // optional namespace grouping related pages
	Title   string
	URL     string
}

// Label returns the target's display name, qualified by context when set.
func (t Target) Label() string {
	if t.Context == "" {
		return t.Title
	}
	return t.Context + "/" + t.Title
}

// Fetcher performs one remote audit call for a target and returns the raw
// result document.
type Fetcher interface {
	Fetch(ctx context.Context, target Target) ([]byte, error)
}

// Store persists one raw result and its derived metrics row.
type Store interface {
	Save(target Target, body []byte, capturedAt time.Time) error
}

// Pass identifies which sweep an outcome belongs to.
type Pass int

const (
	PassInitial Pass = iota
	PassRetry
)

func (p Pass) String() string {
	if p == PassRetry {
		return "retry"
	}
	return "initial"
}

// Outcome describes the result of processing one target within a pass.
type Outcome struct {
	Pass    Pass
	Index   int // 1-based position within the pass
	Total   int // targets in the pass
	Target  Target
	Err     error // nil on success
	Latency time.Duration
}

// Reporter receives per-page outcomes and per-pass summaries as they
// happen. Implementations must tolerate being called from the run
// goroutine only; the runner never calls them concurrently.
type Reporter interface {
	PageDone(Outcome)
	PassDone(Pass, Summary)
}

// Collector records fetch latencies and error states.
type Collector interface {
	Record(latency time.Duration, err error)
}

// Options configure the Runner.
type Options struct {
	Fetcher   Fetcher               // remote audit call (required)
	Store     Store                 // result persistence (required)
	Retry     RetryPolicy           // per-target retry behavior
	Confirm   func(failed int) bool // retry-pass confirmation; nil means never
	Reporter  Reporter              // optional outcome observer
	Collector Collector             // optional latency recorder
	Interval  time.Duration         // minimum spacing between targets (0 = none)
	Logger    *zerolog.Logger       // optional; nil disables engine logging
	Tracer    trace.Tracer
	Clock     func() time.Time // injection point for tests
}

func (o *Options) normalize() {
	o.Retry.normalize()
	if o.Reporter == nil {
		o.Reporter = noopReporter{}
	}
	if o.Collector == nil {
		o.Collector = noopCollector{}
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	if o.Tracer == nil {
		o.Tracer = noop.NewTracerProvider().Tracer("pagepulse")
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.Interval < 0 {
		o.Interval = 0
	}
}

type noopReporter struct{}

func (noopReporter) PageDone(Outcome)       {}
func (noopReporter) PassDone(Pass, Summary) {}

type noopCollector struct{}

func (noopCollector) Record(time.Duration, error) {}
