// Package audit records security-relevant events into the bounded
// security log. Recording is best effort and never fails the caller.
package audit

import (
	"context"
	"time"

	"github.com/cybersib/cybersib/internal/idgen"
	"github.com/cybersib/cybersib/internal/logging"
	"github.com/cybersib/cybersib/internal/models"
)

// Sink is where entries end up; *store.Store satisfies it.
type Sink interface {
	AppendLog(ctx context.Context, e models.SecurityLogEntry)
}

type Recorder struct {
	sink Sink
	log  logging.Logger
	now  func() time.Time
}

func NewRecorder(sink Sink, log logging.Logger, now func() time.Time) *Recorder {
	if now == nil {
		now = time.Now
	}
	return &Recorder{sink: sink, log: log.With("component", "audit"), now: now}
}

// Record appends one entry and mirrors it to the application log.
func (r *Recorder) Record(ctx context.Context, userID string, action models.Action, sev models.Severity, details string) models.SecurityLogEntry {
	e := models.SecurityLogEntry{
		ID:        idgen.NewUUID(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Severity:  sev,
		Timestamp: r.now().UTC(),
	}

	defer func() {
		if p := recover(); p != nil {
			r.log.Error(ctx, "audit sink panicked", "action", action, "panic", p)
		}
	}()
	r.sink.AppendLog(ctx, e)

	args := []any{"action", action, "user_id", userID, "details", details}
	switch sev {
	case models.SeverityError:
		r.log.Error(ctx, "security event", args...)
	case models.SeverityWarning:
		r.log.Warn(ctx, "security event", args...)
	default:
		r.log.Info(ctx, "security event", args...)
	}
	return e
}

func (r *Recorder) Info(ctx context.Context, userID string, action models.Action, details string) {
	r.Record(ctx, userID, action, models.SeverityInfo, details)
}

func (r *Recorder) Warn(ctx context.Context, userID string, action models.Action, details string) {
	r.Record(ctx, userID, action, models.SeverityWarning, details)
}
