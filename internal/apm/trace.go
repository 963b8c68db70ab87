package apm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans on the global tracer provider.
type Tracer interface {
	StartSpanFromContext(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
}

type otelTracer struct {
	name string
}

// NewTracer returns a Tracer for the named instrumentation scope. The global
// provider is resolved per span, so a provider installed after construction
// still receives them.
func NewTracer(name string) Tracer {
	return &otelTracer{name: name}
}

func (t *otelTracer) StartSpanFromContext(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span) {
	ctx, span := otel.Tracer(t.name).Start(ctx, name, opts...)
	return ctx, &traceSpan{span: span}
}
