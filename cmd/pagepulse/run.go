package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pagepulse/pagepulse/internal/config"
	"github.com/pagepulse/pagepulse/internal/dashboard"
	"github.com/pagepulse/pagepulse/internal/logger"
	"github.com/pagepulse/pagepulse/internal/metrics"
	"github.com/pagepulse/pagepulse/internal/output"
	"github.com/pagepulse/pagepulse/internal/pagespeed"
	"github.com/pagepulse/pagepulse/internal/runner"
	"github.com/pagepulse/pagepulse/internal/store"
	"github.com/pagepulse/pagepulse/internal/tracing"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Audit the configured pages and persist their results",
		Long: `Run sweeps the configured page list once, in order. Each page is fetched
with bounded retry; successful results are written under the results
directory and summarized in metrics.csv. If pages failed and the run was
not interrupted, pagepulse offers to retry just the failed pages.

The process exits 0 for any completed run, including runs with failures;
a nonzero exit only signals a configuration error raised before any page
was audited.`,
		RunE: runAudit,
	}
	config.RegisterRunFlags(cmd.Flags())
	return cmd
}

// resultSaver adapts the result store to the runner's Store interface:
// metric extraction plus raw and CSV persistence for one success.
type resultSaver struct {
	store *store.Store
}

func (s *resultSaver) Save(target runner.Target, body []byte, capturedAt time.Time) error {
	rec := pagespeed.Record{
		Title:      target.Title,
		Context:    target.Context,
		CapturedAt: capturedAt,
		Metrics:    pagespeed.ExtractMetrics(body),
	}
	return s.store.Save(rec, body)
}

func runAudit(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	configPath, err := flags.GetString("config")
	if err != nil {
		return err
	}

	cfg, err := config.NewLoader().Load(configPath, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel)
	log.Debug().
		Str("config", cfg.ConfigFile).
		Int("pages", len(cfg.Pages)).
		Msg("configuration loaded")
	ctx := cmd.Context()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	st, err := store.New(cfg.ResultsDir, &log)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := pagespeed.NewClient(pagespeed.Config{
		APIKey:    cfg.APIKey,
		Strategy:  cfg.Strategy,
		Timeout:   cfg.Timeout,
		Propagate: provider.ShouldPropagate(),
	})
	if err != nil {
		return err
	}

	collector := metrics.NewCollector()
	token := runner.NewToken()

	// First interrupt requests a graceful stop: the in-flight page finishes
	// observing the token; no new remote calls start.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		log.Warn().Msg("interrupt received, stopping after current page")
		token.Cancel()
	}()

	var reporter runner.Reporter = output.NewProgressPrinter(cmd.OutOrStdout())
	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, token.Cancel)
		if err != nil {
			return err
		}
		dash.Start()
		reporter = dash
	}

	assumeYes, _ := flags.GetBool("assume-yes")
	noInput, _ := flags.GetBool("no-input")
	// A prompt cannot coexist with the live dashboard owning the terminal.
	promptable := !cfg.Dashboard
	confirm := confirmRetry(cmd.InOrStdin(), cmd.OutOrStdout(), assumeYes, noInput || !promptable)

	targets := make([]runner.Target, 0, len(cfg.Pages))
	for _, page := range cfg.Pages {
		targets = append(targets, runner.Target{
			Context: page.Context,
			Title:   page.Title,
			URL:     page.URL,
		})
	}

	r := runner.New(runner.Options{
		Fetcher:   &pageFetcher{client: client, provider: provider},
		Store:     &resultSaver{store: st},
		Retry:     runner.RetryPolicy{Attempts: cfg.Retries, Delay: cfg.Delay},
		Confirm:   confirm,
		Reporter:  reporter,
		Collector: collector,
		Interval:  cfg.Interval,
		Logger:    &log,
		Tracer:    provider.Tracer(),
	})

	report := r.Run(ctx, targets, token)

	if dash != nil {
		dash.Stop()
	}

	stats := collector.Stats()
	if cfg.JSONOutput {
		if err := output.PrintJSONReport(cmd.OutOrStdout(), report, stats); err != nil {
			log.Error().Err(err).Msg("writing JSON report failed")
		}
	} else {
		output.PrintReport(cmd.OutOrStdout(), report, stats)
	}

	// Partial failures and cancellation are completed runs: exit 0.
	return nil
}

// pageFetcher adapts the PageSpeed client to the runner's Fetcher
// interface, wrapping each attempt in a trace span.
type pageFetcher struct {
	client   *pagespeed.Client
	provider *tracing.Provider
}

func (f *pageFetcher) Fetch(ctx context.Context, target runner.Target) ([]byte, error) {
	ctx, span := tracing.StartAuditSpan(ctx, f.provider.Tracer(), target.URL)
	body, err := f.client.Audit(ctx, target.URL)
	tracing.EndSpan(span, err)
	return body, err
}

// confirmRetry builds the retry-pass confirmation callable. It reads a
// y/n answer from in unless the answer is forced by flags.
func confirmRetry(in io.Reader, out io.Writer, assumeYes, never bool) func(failed int) bool {
	if assumeYes {
		return func(int) bool { return true }
	}
	if never {
		return func(int) bool { return false }
	}
	reader := bufio.NewReader(in)
	return func(failed int) bool {
		fmt.Fprintf(out, "\n%d pages failed. Retry them? [y/N]: ", failed)
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}
