// Package requestcontext carries request-scoped values (request ID, request time,
// tenant hint) through context.Context so services never read them off the transport.
package requestcontext

import (
	"context"
	"time"

	id "realmbridge/pkg/domain"
)

type (
	contextKeyRequestID   struct{}
	contextKeyRequestTime struct{}
	contextKeyTenantHint  struct{}
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, requestID)
}

// RequestID returns the request ID, or "" outside an HTTP request.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return v
	}
	return ""
}

// WithTime pins "now" for everything downstream of ctx.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}

// Now retrieves the request-scoped time, falling back to time.Now()
// for workers, CLI commands and tests that skip the middleware.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithTenantHint(ctx context.Context, hint id.TenantKey) context.Context {
	return context.WithValue(ctx, contextKeyTenantHint{}, hint)
}

// TenantHint returns the tenant the outer transport routed the request to.
func TenantHint(ctx context.Context) id.TenantKey {
	if v, ok := ctx.Value(contextKeyTenantHint{}).(id.TenantKey); ok {
		return v
	}
	return ""
}
