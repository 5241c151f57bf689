// Package config loads and validates pagepulse configuration from a config
// file, environment variables, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validation failures raised before any fetch starts.
var (
	ErrMissingAPIKey = errors.New("api_key is required (or set PAGEPULSE_API_KEY)")
	ErrNoPages       = errors.New("at least one page is required")
)

// Page is one entry of the configured page list.
type Page struct {
	Context string `mapstructure:"context"`
	Title   string `mapstructure:"title"`
	URL     string `mapstructure:"url"`
}

// TracingConfig controls the optional OTLP trace exporter.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"` // "grpc" (default) or "http"
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
	Propagate   bool    `mapstructure:"propagate"`
}

// Config captures every knob of a pagepulse run.
type Config struct {
	APIKey     string        `mapstructure:"api_key"`
	Pages      []Page        `mapstructure:"pages"`
	Retries    int           `mapstructure:"retries"`     // total attempts per page, min 1
	Delay      time.Duration `mapstructure:"-"`           // inter-attempt wait; "delay" in ms in files
	ResultsDir string        `mapstructure:"results_dir"`
	Interval   time.Duration `mapstructure:"interval"` // minimum spacing between pages
	Timeout    time.Duration `mapstructure:"timeout"`  // per-request timeout
	Strategy   string        `mapstructure:"strategy"`
	JSONOutput bool          `mapstructure:"json_output"`
	Dashboard  bool          `mapstructure:"dashboard"`
	LogLevel   string        `mapstructure:"log_level"`
	Tracing    TracingConfig `mapstructure:"tracing"`
	ConfigFile string        `mapstructure:"-"`
}

// Validate fails fast on anything that would make orchestration pointless.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	if len(c.Pages) == 0 {
		return ErrNoPages
	}
	for i, page := range c.Pages {
		if strings.TrimSpace(page.Title) == "" {
			return fmt.Errorf("pages[%d]: title is required", i)
		}
		if strings.TrimSpace(page.URL) == "" {
			return fmt.Errorf("pages[%d] (%s): url is required", i, page.Title)
		}
		if _, err := url.ParseRequestURI(page.URL); err != nil {
			return fmt.Errorf("pages[%d] (%s): invalid url: %w", i, page.Title, err)
		}
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %g", c.Tracing.SampleRate)
	}
	return nil
}
