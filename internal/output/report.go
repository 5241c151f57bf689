// Package output renders the user-facing run reports: per-page progress
// lines during the run and the end-of-run summary on stdout.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pagepulse/pagepulse/internal/metrics"
	"github.com/pagepulse/pagepulse/internal/runner"
)

// PrintReport outputs the human-readable end-of-run summary.
func PrintReport(w io.Writer, report runner.Report, stats metrics.Stats) {
	fmt.Fprintln(w, "\n--- Audit Run Results ---")
	fmt.Fprintf(w, "Run ID:            %s\n", report.RunID)
	if report.Cancelled {
		fmt.Fprintln(w, "Status:            cancelled")
	}

	printPass(w, "Initial pass", report.First)
	if report.Retry != nil {
		printPass(w, "Retry pass", *report.Retry)
	}

	if failed := report.FinalFailures(); len(failed) > 0 {
		fmt.Fprintln(w, "\nUnresolved failures:")
		for _, target := range failed {
			fmt.Fprintf(w, "  - %s (%s)\n", target.Label(), target.URL)
		}
	}

	if stats.Total > 0 {
		fmt.Fprintln(w, "\nFetch latency:")
		fmt.Fprintf(w, "  Min:             %s\n", stats.MinLatency)
		fmt.Fprintf(w, "  Max:             %s\n", stats.MaxLatency)
		fmt.Fprintf(w, "  Mean:            %s\n", stats.MeanLatency)
		fmt.Fprintf(w, "  P50:             %s\n", stats.P50Latency)
		fmt.Fprintf(w, "  P90:             %s\n", stats.P90Latency)
		fmt.Fprintf(w, "  P99:             %s\n", stats.P99Latency)
	}

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nError Breakdown:")
		for errType, count := range stats.Errors {
			fmt.Fprintf(w, "  %s: %d\n", errType, count)
		}
	}
}

func printPass(w io.Writer, name string, sum runner.Summary) {
	fmt.Fprintf(w, "\n%s:\n", name)
	fmt.Fprintf(w, "  Succeeded:       %d\n", sum.Succeeded)
	fmt.Fprintf(w, "  Failed:          %d\n", sum.Failed)
	fmt.Fprintf(w, "  Duration:        %s\n", sum.Duration)
}

// jsonReport is the wire shape of the JSON report.
type jsonReport struct {
	RunID     string        `json:"run_id"`
	Cancelled bool          `json:"cancelled"`
	Initial   jsonPass      `json:"initial_pass"`
	Retry     *jsonPass     `json:"retry_pass,omitempty"`
	Fetches   metrics.Stats `json:"fetches"`
}

type jsonPass struct {
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	FailedPages []string `json:"failed_pages,omitempty"`
	DurationMs  float64  `json:"duration_ms"`
}

// PrintJSONReport outputs a JSON-formatted report.
func PrintJSONReport(w io.Writer, report runner.Report, stats metrics.Stats) error {
	out := jsonReport{
		RunID:     report.RunID,
		Cancelled: report.Cancelled,
		Initial:   toJSONPass(report.First),
		Fetches:   stats,
	}
	if report.Retry != nil {
		retry := toJSONPass(*report.Retry)
		out.Retry = &retry
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func toJSONPass(sum runner.Summary) jsonPass {
	pass := jsonPass{
		Succeeded:  sum.Succeeded,
		Failed:     sum.Failed,
		DurationMs: float64(sum.Duration.Milliseconds()),
	}
	for _, target := range sum.FailedTargets {
		pass.FailedPages = append(pass.FailedPages, target.Label())
	}
	return pass
}
