// Package logger adapts log/slog to the [domain.Logger] diagnostics
// interface.
package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/kivadb/kiva/domain"
)

// Logger implements domain.Logger on top of a slog handler.
type Logger struct {
	log *slog.Logger
}

// NewLogger creates a Logger with the given handler. If handler is nil, a
// text handler to stderr at info level is used.
func NewLogger(handler slog.Handler) domain.Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{log: slog.New(handler)}
}

// NewNopLogger creates a Logger that discards all diagnostics.
func NewNopLogger() domain.Logger {
	return &Logger{log: slog.New(slog.DiscardHandler)}
}

// Emit implements domain.Logger.
func (l *Logger) Emit(level domain.Level, message string, origin string) {
	l.log.LogAttrs(context.Background(), slogLevel(level), message,
		slog.String("origin", origin),
	)
}

func slogLevel(level domain.Level) slog.Level {
	switch level {
	case domain.LevelDebug:
		return slog.LevelDebug
	case domain.LevelInfo:
		return slog.LevelInfo
	case domain.LevelWarn:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
