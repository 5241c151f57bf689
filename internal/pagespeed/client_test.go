package pagespeed_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pagepulse/pagepulse/internal/pagespeed"
)

func newClient(t *testing.T, endpoint string) *pagespeed.Client {
	t.Helper()
	client, err := pagespeed.NewClient(pagespeed.Config{
		APIKey:   "test-key",
		Endpoint: endpoint,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestAuditSendsScoringParameters(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{"lighthouseResult":{}}`))
	}))
	defer server.Close()

	client := newClient(t, server.URL)
	if _, err := client.Audit(context.Background(), "https://example.com/"); err != nil {
		t.Fatalf("Audit: %v", err)
	}

	expect := map[string]string{
		"url":      "https://example.com/",
		"key":      "test-key",
		"strategy": "mobile",
		"category": "performance",
	}
	for name, want := range expect {
		values := query[name]
		if len(values) != 1 || values[0] != want {
			t.Errorf("query %s = %v, want %q", name, values, want)
		}
	}
}

func TestAuditReturnsRawDocument(t *testing.T) {
	doc := `{"lighthouseResult":{"audits":{"speed-index":{"displayValue":"3.1 s"}}}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(doc))
	}))
	defer server.Close()

	body, err := newClient(t, server.URL).Audit(context.Background(), "https://example.com/")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if string(body) != doc {
		t.Errorf("expected the raw document to pass through untouched, got %s", body)
	}
}

func TestAuditTranslatesErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded for quota metric"}}`))
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).Audit(context.Background(), "https://example.com/")
	var apiErr *pagespeed.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", apiErr.Status)
	}
	if apiErr.Message != "Quota exceeded for quota metric" {
		t.Errorf("expected envelope message, got %q", apiErr.Message)
	}
	if !strings.Contains(apiErr.Error(), "429") {
		t.Errorf("error string should carry the status: %s", apiErr.Error())
	}
}

func TestAuditFallsBackToBodyWhenEnvelopeMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	_, err := newClient(t, server.URL).Audit(context.Background(), "https://example.com/")
	var apiErr *pagespeed.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Errorf("expected raw body fallback, got %q", apiErr.Message)
	}
}

func TestAuditHonorsContextCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newClient(t, server.URL).Audit(ctx, "https://example.com/"); err == nil {
		t.Error("expected an error for a cancelled context")
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := pagespeed.NewClient(pagespeed.Config{APIKey: "  "}); err == nil {
		t.Error("expected an error for a blank API key")
	}
}
