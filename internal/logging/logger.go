// Package logging builds the process-wide slog logger. Access logs from the
// dispatcher and per-operation logs from the ledger and identity services
// all share it.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// New creates a JSON logger writing to stdout at the provided level. An
// unparsable level string falls back to info rather than failing boot.
func New(level string) *slog.Logger {
	lvl := new(slog.LevelVar)
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.Set(slog.LevelInfo)
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// Discard returns a logger that drops all output, for wiring services in
// tests without polluting test output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}
