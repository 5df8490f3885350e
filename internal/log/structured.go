package log

import (
	"context"
	"log/slog"
	"net/http"
)

// StructuredLogger emits the fixed-shape events of the request and import
// pipelines so every occurrence carries the same keys.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogHTTPStart logs the start of an HTTP request
func (sl *StructuredLogger) LogHTTPStart(ctx context.Context, r *http.Request, clientIP string) {
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithClientIP(clientIP)

	sl.logger.WithComponent(ComponentHTTP).InfoContext(ctx, "HTTP request started", fields.ToSlice()...)
}

// LogHTTPEnd logs the completion of an HTTP request. 4xx responses log at
// warn and 5xx at error.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	if statusCode >= 400 && statusCode < 500 {
		level = slog.LevelWarn
	} else if statusCode >= 500 {
		level = slog.LevelError
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "", "").
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP)

	sl.logger.WithComponent(ComponentHTTP).Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogImport logs the outcome of one import batch
func (sl *StructuredLogger) LogImport(ctx context.Context, userID int64, source, batchID string, seen, accepted, rejected int) {
	fields := NewFields().
		WithImport(source, batchID, seen, accepted, rejected).
		WithUser(userID).
		WithOperation(OpImport)

	level := slog.LevelInfo
	if rejected > 0 {
		level = slog.LevelWarn
	}
	sl.logger.WithComponent(ComponentImport).Log(ctx, level, "Import finished", fields.ToSlice()...)
}

// LogMutation logs a single-record create, update or delete.
func (sl *StructuredLogger) LogMutation(ctx context.Context, operation string, fields LogFields) {
	fields.WithOperation(operation)
	sl.logger.WithComponent(ComponentStorage).InfoContext(ctx, "Transaction "+operation+"d", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.WithComponent(component).ErrorContext(ctx, msg, allFields.ToSlice()...)
}
