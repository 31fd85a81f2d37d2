package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger. Production always emits JSON;
// outside production LOG_FORMAT picks between json and readable text.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && (cfg.IsProduction() || cfg.LogFormat == "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
