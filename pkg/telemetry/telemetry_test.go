package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"
)

func setupTracerProvider(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exp := tracetest.NewInMemoryExporter()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	return exp
}

func TestInitialize(t *testing.T) {
	t.Run("no endpoint keeps tracing disabled", func(t *testing.T) {
		tel, err := Initialize(context.Background(), Config{ServiceName: "mpgw", SampleRate: 1})
		require.NoError(t, err)
		assert.False(t, tel.Enabled())
		assert.NoError(t, tel.Shutdown(context.Background()))
	})

	t.Run("rejects out of range sample rate", func(t *testing.T) {
		_, err := Initialize(context.Background(), Config{SampleRate: 1.5})
		assert.ErrorIs(t, err, ErrInvalidSampleRate)
	})

	t.Run("custom exporter enables tracing", func(t *testing.T) {
		tel, err := Initialize(context.Background(),
			Config{ServiceName: "mpgw", Environment: "test", SampleRate: 1},
			WithExporter(tracetest.NewInMemoryExporter()),
		)
		require.NoError(t, err)
		t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

		assert.True(t, tel.Enabled())
		assert.NoError(t, tel.Shutdown(context.Background()))
	})
}

func TestStartSpan(t *testing.T) {
	exp := setupTracerProvider(t)

	ctx, span := StartSpan(context.Background(), "ipn.reconcile")
	assert.NotEmpty(t, TraceID(ctx))
	RecordSpanError(span, errors.New("boom"))
	span.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "ipn.reconcile", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestRecordSpanErrorIgnoresNil(t *testing.T) {
	exp := setupTracerProvider(t)

	_, span := StartSpan(context.Background(), "noop")
	RecordSpanError(span, nil)
	span.End()

	require.Len(t, exp.GetSpans(), 1)
	assert.Equal(t, codes.Unset, exp.GetSpans()[0].Status.Code)
}

func TestTraceIDWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceID(context.Background()))
}
