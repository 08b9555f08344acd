package tracing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/KeyIP-Insight/internal/config"
)

const testTimeout = 2 * time.Second

func TestInit_Disabled(t *testing.T) {
	before := otel.GetTracerProvider()

	tp, shutdown, err := Init(context.Background(), config.TracingConfig{}, "test", nil)
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider())

	_, span := tp.Tracer("x").Start(context.Background(), "noop")
	assert.False(t, span.SpanContext().IsValid())
	span.End()
}

func TestInit_EnabledWithoutEndpoint(t *testing.T) {
	_, _, err := Init(context.Background(), config.TracingConfig{Enabled: true}, "test", nil)
	assert.Error(t, err)
}

func TestInit_Enabled(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	tp, shutdown, err := Init(ctx, config.TracingConfig{
		Enabled:     true,
		Endpoint:    "127.0.0.1:4317",
		Insecure:    true,
		ServiceName: "keyip-insight-test",
		Environment: "test",
		SampleRatio: 1,
	}, "v0.0.0", nil)
	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.Same(t, tp, otel.GetTracerProvider())

	require.NoError(t, shutdown(ctx))
}

func TestSampler(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	sample := func(ratio float64) bool {
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec), sdktrace.WithSampler(Sampler(ratio)))
		_, span := tp.Tracer("t").Start(context.Background(), "op")
		defer span.End()
		return span.SpanContext().IsSampled()
	}

	assert.True(t, sample(1))
	assert.True(t, sample(2))
	assert.False(t, sample(0))
	assert.False(t, sample(-1))
	assert.Contains(t, Sampler(0.5).Description(), "TraceIDRatioBased")
}

func TestSampler_FollowsParent(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(Sampler(0)))
	parent := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{1},
		SpanID:     trace.SpanID{1},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), parent)

	_, span := tp.Tracer("t").Start(ctx, "child")
	defer span.End()
	assert.True(t, span.SpanContext().IsSampled())
}

//Personal.AI order the ending
