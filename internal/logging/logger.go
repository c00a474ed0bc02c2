// Package logging wraps zap behind a small interface so packages can log
// with request-scoped context without importing zap directly.
package logging

import "context"

// Logger takes a message followed by alternating keys and values:
//
//	l.Info(ctx, "payment stored", "id", id, "owner", owner)
//
// When ctx carries a span, its trace and span IDs are added to the entry.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds args to every entry written by the returned logger.
	With(args ...any) Logger
}
