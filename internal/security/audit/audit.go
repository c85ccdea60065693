package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger records security-relevant actions as structured log events
type Logger struct {
	logger *slog.Logger
}

// NewLogger creates an audit logger on top of the application logger
func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

// LogAction records one audited action
func (al *Logger) LogAction(ctx context.Context, caller, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("caller", caller),
		slog.String("status", status),
		slog.String("details", details),
		slog.Time("timestamp", time.Now()),
	)
}

// LogDeletion records a cascading deletion request
func (al *Logger) LogDeletion(ctx context.Context, caller, resource, resourceID, status, details string) {
	al.LogAction(ctx, caller, "delete", resource, resourceID, status, details)
}

// LogDenied records a rejected authorization check
func (al *Logger) LogDenied(ctx context.Context, caller, reason string) {
	al.LogAction(ctx, caller, "access_denied", "api", "", "denied", reason)
}
