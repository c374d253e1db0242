// Package tracer is a small tracing abstraction over OpenTelemetry.
//
// Services depend on the Tracer interface; production wiring uses OTelTracer
// and tests use NoopTracer.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span. A non-nil err marks the span as failed.
	// End must be called exactly once.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a span and returns a context carrying it.
	//
	//   ctx, span := t.Start(ctx, tracer.SpanMigrationRun,
	//       tracer.String(tracer.AttrTenant, key.String()),
	//   )
	//   defer func() { span.End(err) }()
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

const (
	SpanTokenVerify  = "token.verify"
	SpanMigrationRun = "migration.run"
)

const (
	AttrTenant    = "tenant.key"
	AttrReason    = "token.failure_reason"
	AttrOldDomain = "migration.old_domain"
	AttrNewDomain = "migration.new_domain"
	AttrUserID    = "user.id"
	AttrStage     = "migration.stage"
	AttrMigrated  = "migration.migrated"
	AttrSkipped   = "migration.skipped"
	AttrFailed    = "migration.failed"
	AttrAborted   = "migration.aborted"
)

const (
	EventUserMigrated = "migration.user_migrated"
	EventUserFailed   = "migration.user_failed"
)
