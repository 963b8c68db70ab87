package apm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/fd1az/rewards-distributor/internal/logger"
)

type Provider string

const (
	ZipkinProvider   Provider = "zipkin"
	ConsoleProvider  Provider = "console"
	OTLPProvider     Provider = "otlp"
	OTLPHTTPProvider Provider = "otlp-http"
	EmptyProvider    Provider = "none"
)

// ParseProvider maps a config value to a Provider. Unknown names are an error.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ZipkinProvider, ConsoleProvider, OTLPProvider, OTLPHTTPProvider, EmptyProvider:
		return p, nil
	case "":
		return EmptyProvider, nil
	default:
		return "", fmt.Errorf("unknown trace provider %q", s)
	}
}

type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

// TracerOptions selects the span exporter.
type TracerOptions struct {
	Provider    Provider
	ServiceName string
	Endpoint    string
	Headers     string    // k=v pairs separated by commas
	Writer      io.Writer // console output, stderr when nil
}

// ParseHeaders parses "k1=v1,k2=v2".
func ParseHeaders(s string) (map[string]string, error) {
	headers := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid header %q, expected key=value", pair)
		}
		headers[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return headers, nil
}

func newExporter(opts TracerOptions) (sdktrace.SpanExporter, error) {
	switch opts.Provider {
	case ConsoleProvider:
		w := opts.Writer
		if w == nil {
			w = os.Stderr
		}
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	case ZipkinProvider:
		return zipkin.New(opts.Endpoint)
	case OTLPProvider, OTLPHTTPProvider:
		headers, err := ParseHeaders(opts.Headers)
		if err != nil {
			return nil, err
		}
		if opts.Provider == OTLPHTTPProvider {
			return otlptracehttp.New(context.Background(),
				otlptracehttp.WithEndpointURL(opts.Endpoint),
				otlptracehttp.WithHeaders(headers))
		}
		return otlptracegrpc.New(context.Background(),
			otlptracegrpc.WithEndpointURL(opts.Endpoint),
			otlptracegrpc.WithHeaders(headers))
	default:
		return nil, fmt.Errorf("unsupported trace provider %q", opts.Provider)
	}
}

// NewTraceProvider installs a global tracer provider that exports through
// the selected provider. EmptyProvider leaves the no-op global in place.
func NewTraceProvider(log logger.LoggerInterface, opts TracerOptions) (TraceProvider, error) {
	if opts.Provider == EmptyProvider || opts.Provider == "" {
		return emptyTraceProvider{}, nil
	}

	exp, err := newExporter(opts)
	if err != nil {
		return nil, fmt.Errorf("trace exporter: %w", err)
	}

	rsrc, _ := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(opts.ServiceName),
			attribute.String("otel.provider", string(opts.Provider)),
		))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(rsrc),
	)

	// Set global trace provider
	otel.SetTracerProvider(tp)

	// Set trace propagator
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	log.Info(context.Background(), "tracing enabled",
		"provider", string(opts.Provider), "endpoint", opts.Endpoint)

	return &traceProvider{tp}, nil
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	return o.tp.Shutdown(ctx)
}
