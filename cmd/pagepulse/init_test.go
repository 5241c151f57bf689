package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pagepulse/pagepulse/internal/config"
)

func runInit(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewInitCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInitWritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	out, err := runInit(t, "-o", path)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output should name the created file: %q", out)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read generated config: %v", err)
	}
	if !strings.HasPrefix(string(raw), "# pagepulse configuration.") {
		t.Errorf("generated file should start with the comment header, got %q", string(raw[:40]))
	}

	// The template must round-trip through the real loader.
	cfg, err := config.NewLoader().Load(path, nil)
	if err != nil {
		t.Fatalf("Load generated config: %v", err)
	}
	if cfg.APIKey != "YOUR_API_KEY" {
		t.Errorf("APIKey = %q", cfg.APIKey)
	}
	if cfg.Retries != 3 {
		t.Errorf("Retries = %d", cfg.Retries)
	}
	if len(cfg.Pages) != 3 {
		t.Fatalf("expected 3 sample pages, got %d", len(cfg.Pages))
	}
	if cfg.Pages[0].Context != "marketing" || cfg.Pages[2].Context != "" {
		t.Errorf("sample page contexts = %q, %q", cfg.Pages[0].Context, cfg.Pages[2].Context)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("generated template should validate as-is: %v", err)
	}
}

func TestInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("keep me"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := runInit(t, "-o", path); err == nil {
		t.Fatal("expected an error for an existing file")
	}
	raw, _ := os.ReadFile(path)
	if string(raw) != "keep me" {
		t.Errorf("existing file was modified: %q", raw)
	}
}

func TestInitForceOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := runInit(t, "-o", path, "-f"); err != nil {
		t.Fatalf("init -f: %v", err)
	}
	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "api_key:") {
		t.Errorf("file was not replaced: %q", raw)
	}
}

func TestInitCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monitoring", "pages.yaml")

	if _, err := runInit(t, "-o", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config not created under new directory: %v", err)
	}
}
