// Package logging builds the process logger. One logger is constructed
// at startup from config and passed down; nothing logs through package
// globals.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger returns a leveled slog.Logger writing text or JSON lines to
// writer. Data output goes to stdout, so callers pass stderr here to
// keep the two apart.
func NewLogger(level string, jsonFormat bool, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = io.Discard
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(writer, opts)
	} else {
		handler = slog.NewTextHandler(writer, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a config level string to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
