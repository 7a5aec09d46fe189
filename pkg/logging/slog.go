package logging

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// SlogLogger implements Logger on top of a slog.Handler
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger wraps a slog handler
func NewSlogLogger(handler slog.Handler) *SlogLogger {
	return &SlogLogger{logger: slog.New(handler)}
}

// NewConsoleLogger writes human-oriented, optionally coloured lines to w
func NewConsoleLogger(w io.Writer, level Level, color bool) *SlogLogger {
	return NewSlogLogger(tint.NewHandler(w, &tint.Options{
		Level:      level.SlogLevel(),
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
	}))
}

// Debug logs a debug message
func (l *SlogLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.logger.Log(ctx, slog.LevelDebug, msg, fields.attrs()...)
}

// Info logs an info message
func (l *SlogLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.logger.Log(ctx, slog.LevelInfo, msg, fields.attrs()...)
}

// Warn logs a warning message
func (l *SlogLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.logger.Log(ctx, slog.LevelWarn, msg, fields.attrs()...)
}

// Error logs an error message
func (l *SlogLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	attrs := fields.attrs()
	if err != nil {
		attrs = append(attrs, tint.Err(err))
	}
	l.logger.Log(ctx, slog.LevelError, msg, attrs...)
}

// WithFields returns a logger with additional fields
func (l *SlogLogger) WithFields(fields Fields) Logger {
	return &SlogLogger{logger: l.logger.With(fields.attrs()...)}
}

// Slog exposes the underlying slog logger
func (l *SlogLogger) Slog() *slog.Logger {
	return l.logger
}

// Close does nothing; the handler's writer is owned by the caller
func (l *SlogLogger) Close() error {
	return nil
}
