package apm

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/fd1az/rewards-distributor/internal/logger"
)

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    Provider
		wantErr bool
	}{
		{in: "zipkin", want: ZipkinProvider},
		{in: " Console ", want: ConsoleProvider},
		{in: "otlp", want: OTLPProvider},
		{in: "otlp-http", want: OTLPHTTPProvider},
		{in: "", want: EmptyProvider},
		{in: "jaeger", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProvider(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHeaders(t *testing.T) {
	h, err := ParseHeaders("x-api-key=abc, x-dataset = rewards ,")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"x-api-key": "abc", "x-dataset": "rewards"}, h)

	_, err = ParseHeaders("novalue")
	assert.Error(t, err)
}

func TestNewTraceProvider_Console(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	tp, err := NewTraceProvider(logger.NewNop(), TracerOptions{
		Provider:    ConsoleProvider,
		ServiceName: "test",
		Writer:      &buf,
	})
	require.NoError(t, err)

	_, span := NewTracer("test").StartSpanFromContext(context.Background(), "unit.span")
	span.End()

	require.NoError(t, tp.Stop())
	assert.Contains(t, buf.String(), "unit.span")
}

func TestNewTraceProvider_Empty(t *testing.T) {
	tp, err := NewTraceProvider(logger.NewNop(), TracerOptions{Provider: EmptyProvider})
	require.NoError(t, err)
	assert.NoError(t, tp.Stop())
}
