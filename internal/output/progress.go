package output

import (
	"fmt"
	"io"
	"time"

	"github.com/pagepulse/pagepulse/internal/runner"
)

// ProgressPrinter writes one line per page outcome and a short line at the
// end of each pass. It implements runner.Reporter.
type ProgressPrinter struct {
	w io.Writer
}

// NewProgressPrinter creates a progress printer writing to w.
func NewProgressPrinter(w io.Writer) *ProgressPrinter {
	if w == nil {
		w = io.Discard
	}
	return &ProgressPrinter{w: w}
}

// PageDone prints the outcome of one page.
func (p *ProgressPrinter) PageDone(o runner.Outcome) {
	if o.Err != nil {
		fmt.Fprintf(p.w, "[%d/%d] FAIL %s: %v\n", o.Index, o.Total, o.Target.Label(), o.Err)
		return
	}
	fmt.Fprintf(p.w, "[%d/%d] ok   %s (%s)\n", o.Index, o.Total, o.Target.Label(), o.Latency.Round(10*time.Millisecond))
}

// PassDone prints the pass summary line.
func (p *ProgressPrinter) PassDone(pass runner.Pass, sum runner.Summary) {
	fmt.Fprintf(p.w, "--- %s pass: %d succeeded, %d failed (%s)\n",
		pass, sum.Succeeded, sum.Failed, sum.Duration.Round(10*time.Millisecond))
}
