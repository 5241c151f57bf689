package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/pagepulse/pagepulse/internal/metrics"
)

func TestCollectorCountsSuccessesAndFailures(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(100*time.Millisecond, nil)
	c.Record(200*time.Millisecond, nil)
	c.Record(300*time.Millisecond, errors.New("boom"))

	stats := c.Stats()
	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.Successes != 2 {
		t.Errorf("Successes = %d, want 2", stats.Successes)
	}
	if stats.Failures != 1 {
		t.Errorf("Failures = %d, want 1", stats.Failures)
	}
}

func TestCollectorLatencyAggregates(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(100*time.Millisecond, nil)
	c.Record(200*time.Millisecond, nil)
	c.Record(600*time.Millisecond, nil)

	stats := c.Stats()
	if stats.MinLatency != 100*time.Millisecond {
		t.Errorf("MinLatency = %s", stats.MinLatency)
	}
	if stats.MaxLatency != 600*time.Millisecond {
		t.Errorf("MaxLatency = %s", stats.MaxLatency)
	}
	if stats.MeanLatency != 300*time.Millisecond {
		t.Errorf("MeanLatency = %s", stats.MeanLatency)
	}
	// Histogram quantiles carry 3 significant figures; allow 1% slack.
	if got := stats.P50Latency; got < 198*time.Millisecond || got > 202*time.Millisecond {
		t.Errorf("P50Latency = %s, want ~200ms", got)
	}
	if stats.MeanLatencyMs != 300 {
		t.Errorf("MeanLatencyMs = %v", stats.MeanLatencyMs)
	}
}

func TestCollectorErrorBreakdown(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(time.Millisecond, errors.New("first"))
	c.Record(time.Millisecond, errors.New("second"))

	stats := c.Stats()
	if len(stats.Errors) != 1 {
		t.Fatalf("expected one error type, got %v", stats.Errors)
	}
	for _, n := range stats.Errors {
		if n != 2 {
			t.Errorf("error count = %d, want 2", n)
		}
	}
}

func TestCollectorEmptyStats(t *testing.T) {
	stats := metrics.NewCollector().Stats()
	if stats.Total != 0 || stats.MeanLatency != 0 || stats.P99Latency != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
	if stats.Errors != nil {
		t.Errorf("Errors should be nil when no failures occurred, got %v", stats.Errors)
	}
}
