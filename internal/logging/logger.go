// Package logging is the application log of the CyberSib client. Records
// go to a log/slog or zap backend chosen by configuration (see New), and
// fields attached to a context with ContextWith ride along on every record
// written with that context.
//
// The security log kept by the domain store is separate; see package audit.
package logging

import "context"

// Logger writes leveled records made of a message plus alternating keys
// and values:
//
//	log.Info(ctx, "lab completed", "user_id", id, "lab_id", labID)
//
// Every method takes the request context so that ContextWith fields and
// backend handlers see it.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	// Warn is for conditions the client recovers from, such as a dropped
	// session or a failed write that will be retried.
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds fields to every record of the returned logger, typically
	// "component".
	With(args ...any) Logger
}
