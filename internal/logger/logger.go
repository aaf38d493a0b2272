package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New creates the process-wide slog logger. Output is one JSON line per
// record so webhook deliveries and request logs can be ingested as-is.
// LOG_LEVEL selects the minimum level; anything unrecognized means info.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelFromEnv()})
	return slog.New(handler)
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
