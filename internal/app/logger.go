package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production always emits JSON so
// the collector can parse it; elsewhere LOG_FORMAT picks the handler and
// source locations are attached to ease debugging.
func NewLogger(cfg *Config) *slog.Logger {
	var handler slog.Handler
	switch {
	case cfg.IsProduction() || cfg.LogFormat == "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true})
	}
	return slog.New(handler).With(slog.String("service", "dsicola"))
}
