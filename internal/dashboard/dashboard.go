// Package dashboard renders a live terminal view of an audit run: pass
// progress, the latest page outcomes, and fetch latency stats.
package dashboard

import (
	"fmt"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/pagepulse/pagepulse/internal/metrics"
	"github.com/pagepulse/pagepulse/internal/runner"
)

const maxVisibleOutcomes = 50

// Dashboard is a termui view updated from runner outcomes. It implements
// runner.Reporter. Pressing q or Ctrl-C invokes the shutdown func, which
// the caller wires to the run's cancellation token.
type Dashboard struct {
	mu        sync.Mutex
	collector *metrics.Collector
	shutdown  func()

	gauge    *widgets.Gauge
	outcomes *widgets.List
	stats    *widgets.Paragraph
	grid     *ui.Grid

	done     chan struct{}
	finished chan struct{}
}

// New initializes the terminal UI. The caller must call Stop to restore
// the terminal.
func New(collector *metrics.Collector, shutdown func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("initialize termui: %w", err)
	}

	d := &Dashboard{
		collector: collector,
		shutdown:  shutdown,
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
	}
	d.initWidgets()
	return d, nil
}

func (d *Dashboard) initWidgets() {
	d.gauge = widgets.NewGauge()
	d.gauge.Title = "Pass Progress"
	d.gauge.BarColor = ui.ColorBlue
	d.gauge.BorderStyle.Fg = ui.ColorCyan

	d.outcomes = widgets.NewList()
	d.outcomes.Title = "Page Outcomes (q to cancel)"
	d.outcomes.BorderStyle.Fg = ui.ColorCyan
	d.outcomes.Rows = []string{"waiting for first page..."}

	d.stats = widgets.NewParagraph()
	d.stats.Title = "Fetch Latency"
	d.stats.BorderStyle.Fg = ui.ColorCyan
	d.stats.Text = "no samples yet"

	d.grid = ui.NewGrid()
	width, height := ui.TerminalDimensions()
	d.grid.SetRect(0, 0, width, height)
	d.grid.Set(
		ui.NewRow(0.15, ui.NewCol(1.0, d.gauge)),
		ui.NewRow(0.55, ui.NewCol(1.0, d.outcomes)),
		ui.NewRow(0.30, ui.NewCol(1.0, d.stats)),
	)
}

// Start begins the render and input loop in a background goroutine.
func (d *Dashboard) Start() {
	go d.run()
}

// Stop halts the loop and restores the terminal.
func (d *Dashboard) Stop() {
	select {
	case <-d.done:
	default:
		close(d.done)
	}
	<-d.finished
	ui.Close()
}

func (d *Dashboard) run() {
	defer close(d.finished)

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	events := ui.PollEvents()

	d.render()
	for {
		select {
		case <-d.done:
			return
		case e := <-events:
			switch e.ID {
			case "q", "<C-c>":
				if d.shutdown != nil {
					d.shutdown()
				}
			case "<Resize>":
				if payload, ok := e.Payload.(ui.Resize); ok {
					d.mu.Lock()
					d.grid.SetRect(0, 0, payload.Width, payload.Height)
					d.mu.Unlock()
				}
			}
		case <-ticker.C:
			d.refreshStats()
			d.render()
		}
	}
}

// PageDone records one outcome line and advances the progress gauge.
func (d *Dashboard) PageDone(o runner.Outcome) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.outcomes.Rows) == 1 && d.outcomes.Rows[0] == "waiting for first page..." {
		d.outcomes.Rows = nil
	}
	d.outcomes.Rows = append(d.outcomes.Rows, formatOutcome(o))
	if len(d.outcomes.Rows) > maxVisibleOutcomes {
		d.outcomes.Rows = d.outcomes.Rows[len(d.outcomes.Rows)-maxVisibleOutcomes:]
	}

	d.gauge.Title = fmt.Sprintf("%s pass", o.Pass)
	if o.Total > 0 {
		d.gauge.Percent = o.Index * 100 / o.Total
	}
}

// PassDone pins the pass summary at the top of the outcome list.
func (d *Dashboard) PassDone(pass runner.Pass, sum runner.Summary) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.outcomes.Rows = append(d.outcomes.Rows, fmt.Sprintf(
		"--- %s pass done: %d ok, %d failed", pass, sum.Succeeded, sum.Failed))
	d.gauge.Percent = 100
}

func (d *Dashboard) refreshStats() {
	if d.collector == nil {
		return
	}
	stats := d.collector.Stats()
	d.mu.Lock()
	d.stats.Text = fmt.Sprintf(
		"Fetches: %d (ok %d / failed %d)\nMin: %s  Max: %s\nMean: %s  P50: %s  P90: %s  P99: %s",
		stats.Total, stats.Successes, stats.Failures,
		stats.MinLatency.Round(time.Millisecond), stats.MaxLatency.Round(time.Millisecond),
		stats.MeanLatency.Round(time.Millisecond), stats.P50Latency.Round(time.Millisecond),
		stats.P90Latency.Round(time.Millisecond), stats.P99Latency.Round(time.Millisecond),
	)
	d.mu.Unlock()
}

func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()
	ui.Render(d.grid)
}

// formatOutcome renders one outcome list row.
func formatOutcome(o runner.Outcome) string {
	if o.Err != nil {
		return fmt.Sprintf("[%d/%d] FAIL %s: %v", o.Index, o.Total, o.Target.Label(), o.Err)
	}
	return fmt.Sprintf("[%d/%d] ok   %s (%s)", o.Index, o.Total, o.Target.Label(), o.Latency.Round(10*time.Millisecond))
}
