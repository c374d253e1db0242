package audit

import (
	"context"
	"log/slog"

	"realmbridge/pkg/requestcontext"
)

// Emitter writes an audit log line and forwards the event to a publisher.
// Publishing failures are logged, never returned: audit must not fail the
// operation it describes.
type Emitter struct {
	logger    *slog.Logger
	publisher Sink
}

// Sink is satisfied by *Publisher.
type Sink interface {
	Emit(ctx context.Context, event Event) error
}

// NewEmitter accepts nil for either collaborator.
func NewEmitter(logger *slog.Logger, publisher Sink) *Emitter {
	return &Emitter{logger: logger, publisher: publisher}
}

func (e *Emitter) Emit(ctx context.Context, event Event) {
	if e == nil {
		return
	}
	if e.logger != nil {
		args := []any{
			"event", string(event.Action),
			"log_type", "audit",
			"tenant_key", event.TenantKey.String(),
		}
		if event.UserID != "" {
			args = append(args, "user_id", event.UserID)
		}
		if event.Detail != "" {
			args = append(args, "detail", event.Detail)
		}
		if requestID := requestcontext.RequestID(ctx); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		e.logger.InfoContext(ctx, string(event.Action), args...)
	}
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Emit(ctx, event); err != nil && e.logger != nil {
		e.logger.ErrorContext(ctx, "failed to emit audit event",
			"event", string(event.Action),
			"error", err,
		)
	}
}
