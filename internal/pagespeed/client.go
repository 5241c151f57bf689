// Package pagespeed calls the Google PageSpeed Insights v5 API and extracts
// the performance audit metrics pagepulse records.
package pagespeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/pagepulse/pagepulse/internal/tracing"
)

// DefaultEndpoint is the PageSpeed Insights v5 runPagespeed URL.
const DefaultEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

const maxErrorBodyBytes = 512

// APIError represents a non-success response from the scoring API, with the
// human-readable message pulled from the response envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pagespeed API: HTTP %d: %s", e.Status, e.Message)
}

// Config configures a Client.
type Config struct {
	APIKey    string
	Endpoint  string        // defaults to DefaultEndpoint
	Strategy  string        // defaults to "mobile"
	Timeout   time.Duration // per-request; defaults to 30s
	Propagate bool          // inject W3C trace headers
}

// Client audits single pages against the scoring API. It is stateless
// beyond its configuration and safe for reuse across a run.
type Client struct {
	http      *http.Client
	endpoint  string
	apiKey    string
	strategy  string
	propagate bool
}

// NewClient builds a Client from config.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("pagespeed: API key is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("pagespeed: invalid endpoint: %w", err)
	}
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = "mobile"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:      &http.Client{Timeout: timeout},
		endpoint:  endpoint,
		apiKey:    cfg.APIKey,
		strategy:  strategy,
		propagate: cfg.Propagate,
	}, nil
}

// Audit scores one page and returns the raw result document. Non-success
// responses are translated into an *APIError carrying the envelope's error
// message.
func (c *Client) Audit(ctx context.Context, pageURL string) ([]byte, error) {
	query := url.Values{}
	query.Set("url", pageURL)
	query.Set("key", c.apiKey)
	query.Set("strategy", c.strategy)
	query.Set("category", "performance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("pagespeed: build request: %w", err)
	}
	if c.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pagespeed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pagespeed: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// errorMessage pulls the error field from the API's error envelope, falling
// back to a trimmed body prefix when the envelope is absent.
func errorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return msg.String()
	}
	trimmed := strings.TrimSpace(string(body))
	if len(trimmed) > maxErrorBodyBytes {
		trimmed = trimmed[:maxErrorBodyBytes]
	}
	if trimmed == "" {
		return "no response body"
	}
	return trimmed
}
