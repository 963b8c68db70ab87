package apm

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span is the subset of an OpenTelemetry span the services record on.
type Span interface {
	SetAttributes(kv ...attribute.KeyValue)
	SetStatus(code codes.Code, description string)
	NoticeError(err error)
	End(options ...trace.SpanEndOption)
}

type traceSpan struct {
	span trace.Span
}

func (s *traceSpan) SetAttributes(kv ...attribute.KeyValue) {
	s.span.SetAttributes(kv...)
}

func (s *traceSpan) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}

// NoticeError records err on the span and marks it failed. A nil err is ignored.
func (s *traceSpan) NoticeError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

func (s *traceSpan) End(options ...trace.SpanEndOption) {
	s.span.End(options...)
}
