package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger writing to stdout. The level defaults
// to info; set ORGBOOK_LOG_LEVEL=debug to see per-candidate enrichment
// fallbacks.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("ORGBOOK_LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
