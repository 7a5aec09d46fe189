// Package logging provides the structured logger used across dirsnap.
package logging

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// Level represents log severity
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// Fields represents structured log fields
type Fields map[string]interface{}

// Logger defines the interface for logging
// Implementations write through log/slog handlers (console, JSON, text).
type Logger interface {
	// Debug logs a debug message
	Debug(ctx context.Context, msg string, fields Fields)

	// Info logs an info message
	Info(ctx context.Context, msg string, fields Fields)

	// Warn logs a warning message
	Warn(ctx context.Context, msg string, fields Fields)

	// Error logs an error message
	Error(ctx context.Context, msg string, err error, fields Fields)

	// WithFields returns a logger with additional fields
	WithFields(fields Fields) Logger

	// Close flushes and closes the logger
	Close() error
}

// NullLogger discards everything. Components default to it when no
// logger is configured.
type NullLogger struct{}

// NewNullLogger creates a new null logger
func NewNullLogger() *NullLogger { return &NullLogger{} }

func (l *NullLogger) Debug(context.Context, string, Fields)        {}
func (l *NullLogger) Info(context.Context, string, Fields)         {}
func (l *NullLogger) Warn(context.Context, string, Fields)         {}
func (l *NullLogger) Error(context.Context, string, error, Fields) {}
func (l *NullLogger) WithFields(Fields) Logger                     { return l }
func (l *NullLogger) Close() error                                 { return nil }

// OrNull returns logger, or a NullLogger when it is nil
func OrNull(logger Logger) Logger {
	if logger == nil {
		return NewNullLogger()
	}
	return logger
}

// ParseLevel parses a log level string, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// ValidLevel reports whether s names a level
func ValidLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// LevelString returns the upper-case level name
func LevelString(level Level) string {
	switch level {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SlogLevel converts a Level to its slog equivalent
func (l Level) SlogLevel() slog.Level {
	switch l {
	case DebugLevel:
		return slog.LevelDebug
	case WarnLevel:
		return slog.LevelWarn
	case ErrorLevel:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// attrs converts fields to slog attributes in key order
func (f Fields) attrs() []any {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, slog.Any(k, f[k]))
	}
	return out
}
