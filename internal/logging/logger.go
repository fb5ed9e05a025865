// Package logging is the structured logger passed to every server component.
// The only implementation writes JSON through log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "connection registered", "user_id", id, "conn_id", connID)
type Logger interface {
	// Debug logs high-volume diagnostics (per-frame, per-push).
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs lifecycle events: connects, disconnects, deliveries.
	Info(ctx context.Context, msg string, args ...any)

	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures the caller could not recover from.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying args on every record,
	// e.g. logger.With("module", "hub").
	With(args ...any) Logger
}
