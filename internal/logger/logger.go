// Package logger builds the zerolog logger used for engine diagnostics.
// Log lines go to stderr so stdout stays clean for reports.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a console logger at the given level. An empty or unknown
// level falls back to info.
func New(level string) zerolog.Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter is New with an explicit sink, for tests.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
