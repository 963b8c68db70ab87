package apm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestTracer_RecordsOnGlobalProvider(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	// Created before the provider is installed, as services are.
	tracer := NewTracer("rewards")

	rec := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec)))

	_, ok := tracer.StartSpanFromContext(context.Background(), "rewards.ok")
	ok.SetAttributes(attribute.String("tx_hash", "0x01"), attribute.Int("attempts", 2))
	ok.SetStatus(codes.Ok, "confirmed")
	ok.NoticeError(nil)
	ok.End()

	_, failed := tracer.StartSpanFromContext(context.Background(), "rewards.failed")
	failed.NoticeError(errors.New("SIMULATION_REJECTED: paused"))
	failed.End()

	spans := rec.Ended()
	require.Len(t, spans, 2)

	assert.Equal(t, "rewards.ok", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Len(t, spans[0].Attributes(), 2)
	assert.Empty(t, spans[0].Events())

	assert.Equal(t, "rewards.failed", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
	assert.Equal(t, "SIMULATION_REJECTED: paused", spans[1].Status().Description)
	require.Len(t, spans[1].Events(), 1)
	assert.Equal(t, "exception", spans[1].Events()[0].Name)
}
