package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/luisbfsousa/mect-sub001/internal/config"
)

// New creates a preconfigured slog.Logger writing to stdout.
func New(cfg *config.Config) *slog.Logger {
	return Build(os.Stdout, cfg.LogLevel, cfg.LogFormat)
}

// Build creates a slog.Logger for the given writer, level and format.
// Unknown levels fall back to info, unknown formats to JSON.
func Build(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
