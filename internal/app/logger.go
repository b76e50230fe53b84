package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production runs want JSON lines
// for the log pipeline; everywhere else a text handler is easier on the
// eyes. Source locations are attached either way.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
