// Package logging is the structured logger shared by the client packages.
// Production code logs through log/slog; tests pass Nop.
package logging

import "context"

// Logger takes a message plus alternating key and value args:
//
//	logger.Info(ctx, "list fetch", "resource", "bookings", "page", 2)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds args to every record of the returned logger.
	With(args ...any) Logger
}

var _ Logger = (*SlogLogger)(nil)
