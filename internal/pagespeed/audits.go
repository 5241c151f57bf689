package pagespeed

import (
	"time"

	"github.com/tidwall/gjson"
)

// Audit identifiers in the Lighthouse result keyed to the metrics recorded
// per page.
const (
	auditFirstContentfulPaint   = "first-contentful-paint"
	auditLargestContentfulPaint = "largest-contentful-paint"
	auditCumulativeLayoutShift  = "cumulative-layout-shift"
	auditTotalBlockingTime      = "total-blocking-time"
	auditSpeedIndex             = "speed-index"
)

// Metrics holds the five display-formatted performance values extracted
// from one result document. A missing audit yields an empty string.
type Metrics struct {
	FirstContentfulPaint   string
	LargestContentfulPaint string
	CumulativeLayoutShift  string
	TotalBlockingTime      string
	SpeedIndex             string
}

// Record is one derived metrics row: the extracted metrics plus the page
// identity and capture time.
type Record struct {
	Title      string
	Context    string
	CapturedAt time.Time
	Metrics
}

// ExtractMetrics pulls the display values out of a raw result document.
// The document is otherwise treated as opaque.
func ExtractMetrics(body []byte) Metrics {
	return Metrics{
		FirstContentfulPaint:   displayValue(body, auditFirstContentfulPaint),
		LargestContentfulPaint: displayValue(body, auditLargestContentfulPaint),
		CumulativeLayoutShift:  displayValue(body, auditCumulativeLayoutShift),
		TotalBlockingTime:      displayValue(body, auditTotalBlockingTime),
		SpeedIndex:             displayValue(body, auditSpeedIndex),
	}
}

func displayValue(body []byte, auditID string) string {
	return gjson.GetBytes(body, "lighthouseResult.audits."+auditID+".displayValue").String()
}
