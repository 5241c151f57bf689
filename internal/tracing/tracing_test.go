package tracing_test

import (
	"context"
	"testing"

	"github.com/pagepulse/pagepulse/internal/config"
	"github.com/pagepulse/pagepulse/internal/tracing"
)

func TestDisabledTracingReturnsNoopProvider(t *testing.T) {
	p, err := tracing.Init(context.Background(), config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if p.Tracer() == nil {
		t.Fatal("Tracer must never be nil")
	}
	if p.ShouldPropagate() {
		t.Error("propagation must be off by default")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestEnabledWithoutEndpointStaysNoop(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	p, err := tracing.Init(context.Background(), config.TracingConfig{
		Enabled:   true,
		Propagate: true,
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !p.ShouldPropagate() {
		t.Error("propagation should follow config even without an exporter")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestUnsupportedProtocolFails(t *testing.T) {
	_, err := tracing.Init(context.Background(), config.TracingConfig{
		Enabled:  true,
		Endpoint: "localhost:4317",
		Protocol: "carrier-pigeon",
	})
	if err == nil {
		t.Fatal("expected an error for an unsupported OTLP protocol")
	}
}

func TestNilProviderIsSafe(t *testing.T) {
	var p *tracing.Provider
	if p.Tracer() == nil {
		t.Error("nil provider Tracer must return a noop tracer")
	}
	if p.ShouldPropagate() {
		t.Error("nil provider must not propagate")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown on nil provider: %v", err)
	}
}

func TestSpanLifecycleWithNoopTracer(t *testing.T) {
	p, err := tracing.Init(context.Background(), config.TracingConfig{})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	ctx, span := tracing.StartAuditSpan(context.Background(), p.Tracer(), "https://example.com/")
	if ctx == nil || span == nil {
		t.Fatal("StartAuditSpan returned nil context or span")
	}
	tracing.EndSpan(span, nil)
}
