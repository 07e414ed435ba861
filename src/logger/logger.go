// backend/src/logger/logger.go
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// L is the global logger. It points at slog's default until InitLogger runs,
// so packages can log safely from tests.
var L = slog.Default()

type contextKey string

const loggerKey contextKey = "logger"

// ParseLevel maps a LOG_LEVEL string onto a slog level. Unknown values yield
// info and false.
func ParseLevel(levelStr string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// InitLogger initializes the global logger with a JSON handler on stdout.
// Call this once at application startup, after loading config.
func InitLogger(logLevelStr string) {
	L = New(os.Stdout, logLevelStr)
	slog.SetDefault(L)
	L.Info("Logger initialized", "level", logLevelStr)
}

// New builds a JSON logger writing to w with RFC3339 timestamps.
func New(w io.Writer, logLevelStr string) *slog.Logger {
	level, ok := ParseLevel(logLevelStr)
	if !ok {
		slog.Warn("Invalid LOG_LEVEL specified, defaulting to INFO", "configuredLevel", logLevelStr)
	}

	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.Format(time.RFC3339))
				}
			}
			return a
		},
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// FromContext retrieves a logger from context, or returns the global logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return logger
		}
	}
	return L
}

// ToContext embeds a slog.Logger into a context.Context.
func ToContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}
