package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"realmbridge/pkg/platform/tracer"
)

func TestNoopTracer(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanTokenVerify, tracer.String(tracer.AttrTenant, "acme"))
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Bool("flag", true))
	span.AddEvent(tracer.EventUserMigrated, tracer.Int(tracer.AttrMigrated, 1))
	span.End(errors.New("boom"))
}

func TestOTelTracerWithInjectedProvider(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))

	_, span := tr.Start(context.Background(), tracer.SpanMigrationRun,
		tracer.String(tracer.AttrOldDomain, "old.com"),
		tracer.Int64("count", 3),
	)
	require.NotNil(t, span)
	span.AddEvent(tracer.EventUserFailed, tracer.String(tracer.AttrStage, "rewrite"))
	span.End(nil)
}

func TestAttributeConstructors(t *testing.T) {
	assert.Equal(t, tracer.Attribute{Key: "k", Value: "v"}, tracer.String("k", "v"))
	assert.Equal(t, int64(150), tracer.Duration("latency", 150*time.Millisecond).Value)
	assert.Equal(t, 7, tracer.Int("n", 7).Value)
}
