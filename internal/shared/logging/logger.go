package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a slog.Logger for subsystem. BRIDGECTL_LOG_LEVEL selects the
// level (debug, info, warn, error) and BRIDGECTL_LOG_FORMAT the handler
// (json, text).
func New(subsystem string) *slog.Logger {
	return NewWithWriter(os.Stdout, subsystem, os.Getenv("BRIDGECTL_LOG_LEVEL"), os.Getenv("BRIDGECTL_LOG_FORMAT"))
}

// NewWithWriter builds a logger writing to w with an explicit level and format.
func NewWithWriter(w io.Writer, subsystem, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true, Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(format), "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("subsystem", subsystem)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
