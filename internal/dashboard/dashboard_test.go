package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/pagepulse/pagepulse/internal/runner"
)

func TestFormatOutcome(t *testing.T) {
	target := runner.Target{Context: "blog", Title: "home", URL: "https://example.com/"}

	got := formatOutcome(runner.Outcome{Index: 1, Total: 3, Target: target, Latency: 1200 * time.Millisecond})
	if want := "[1/3] ok   blog/home (1.2s)"; got != want {
		t.Errorf("success row = %q, want %q", got, want)
	}

	got = formatOutcome(runner.Outcome{Index: 2, Total: 3, Target: target, Err: errors.New("boom")})
	if want := "[2/3] FAIL blog/home: boom"; got != want {
		t.Errorf("failure row = %q, want %q", got, want)
	}
}

func TestPageDoneKeepsBoundedRows(t *testing.T) {
	// Widgets-only construction; the terminal is never initialized.
	d := &Dashboard{}
	d.initWidgets()

	total := maxVisibleOutcomes + 10
	for i := 1; i <= total; i++ {
		d.PageDone(runner.Outcome{
			Index:  i,
			Total:  total,
			Target: runner.Target{Title: "home", URL: "https://example.com/"},
		})
	}

	if len(d.outcomes.Rows) != maxVisibleOutcomes {
		t.Errorf("rows = %d, want %d", len(d.outcomes.Rows), maxVisibleOutcomes)
	}
	if d.gauge.Percent != 100 {
		t.Errorf("gauge = %d%%, want 100%%", d.gauge.Percent)
	}
}

func TestPageDoneReplacesPlaceholder(t *testing.T) {
	d := &Dashboard{}
	d.initWidgets()

	d.PageDone(runner.Outcome{Index: 1, Total: 2, Target: runner.Target{Title: "home"}})
	if len(d.outcomes.Rows) != 1 {
		t.Fatalf("rows = %v", d.outcomes.Rows)
	}
	if d.outcomes.Rows[0] == "waiting for first page..." {
		t.Error("placeholder row should be replaced by the first outcome")
	}
}

func TestPassDoneClosesGauge(t *testing.T) {
	d := &Dashboard{}
	d.initWidgets()

	d.PassDone(runner.PassInitial, runner.Summary{Succeeded: 1, Failed: 1})
	if d.gauge.Percent != 100 {
		t.Errorf("gauge = %d%%, want 100%%", d.gauge.Percent)
	}
}
