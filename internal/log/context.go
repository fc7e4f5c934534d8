package log

import (
	"context"
	"log/slog"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogMutation logs a ledger change that was applied in memory
func (sl *StructuredLogger) LogMutation(ctx context.Context, op string, revision int64, alerts int) {
	fields := NewFields().
		WithOperation(op).
		WithRevision(revision).
		WithComponent(ComponentLedger)
	fields[FieldAlertCount] = alerts

	sl.logger.Logger.InfoContext(ctx, "Ledger updated", fields.ToSlice()...)
}

// LogRejected logs a mutation that failed validation or a guard
func (sl *StructuredLogger) LogRejected(ctx context.Context, op string, err error, errorType string) {
	fields := NewFields().
		WithOperation(op).
		WithError(err).
		WithErrorType(errorType).
		WithComponent(ComponentLedger)

	sl.logger.Logger.WarnContext(ctx, "Ledger change rejected", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.Logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
