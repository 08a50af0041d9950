// Package logging is the structured logger used by every layer of the
// client. The only implementation wraps a zap SugaredLogger.
package logging

import "context"

// Logger takes a message plus alternating key/value pairs:
//
//	log.Info(ctx, "spreadsheet downloaded", "sheet", id, "path", path)
//
// The zap backend ignores ctx.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every entry.
	With(args ...any) Logger
}

var _ Logger = (*ZapLogger)(nil)
