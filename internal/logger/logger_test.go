package logger_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pagepulse/pagepulse/internal/logger"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("warn", &buf)

	log.Debug().Msg("hidden")
	log.Info().Msg("also hidden")
	log.Warn().Msg("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output leaked below-threshold lines: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn line missing from %q", out)
	}
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter("chatty", &buf)

	if got := log.GetLevel(); got != zerolog.InfoLevel {
		t.Errorf("level = %s, want info", got)
	}

	log.Debug().Msg("hidden")
	log.Info().Msg("visible")
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "visible") {
		t.Errorf("unexpected output %q", out)
	}
}
