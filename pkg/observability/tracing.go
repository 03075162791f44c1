// Package observability records spans and Prometheus metrics for dispatched
// methods and for each tool, resource and prompt invocation.
package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	mcperrors "github.com/sdlc-tools/mcp-server/pkg/errors"
)

const instrumentationName = "github.com/sdlc-tools/mcp-server"

// ExporterType names where spans are sent
type ExporterType string

const (
	ExporterTypeNone     ExporterType = "none"
	ExporterTypeOTLPGRPC ExporterType = "otlp-grpc"
	ExporterTypeOTLPHTTP ExporterType = "otlp-http"
	// ExporterTypeNoop records spans in process and exports nothing
	ExporterTypeNoop ExporterType = "noop"
)

type exporterFactory func(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error)

var exporters = map[ExporterType]exporterFactory{
	ExporterTypeOTLPGRPC: func(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
		var opts []otlptracegrpc.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	},
	ExporterTypeOTLPHTTP: func(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
		var opts []otlptracehttp.Option
		if cfg.Endpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
		}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	},
	ExporterTypeNoop: func(context.Context, TracingConfig) (sdktrace.SpanExporter, error) {
		return discardExporter{}, nil
	},
}

// ParseExporterType validates a --trace-exporter value; "" means none
func ParseExporterType(name string) (ExporterType, error) {
	t := ExporterType(name)
	if t == "" || t == ExporterTypeNone {
		return ExporterTypeNone, nil
	}
	if _, ok := exporters[t]; !ok {
		return "", fmt.Errorf("unsupported exporter type: %s", name)
	}
	return t, nil
}

// TracingConfig configures span export
type TracingConfig struct {
	ServiceName    string
	ServiceVersion string

	ExporterType ExporterType
	// Endpoint is the collector host:port; empty uses the OTLP default
	Endpoint string
	Insecure bool

	// SampleRate is the sampled fraction of root spans; 0 means all
	SampleRate float64

	// SetGlobal installs the provider as the otel global
	SetGlobal bool
}

// TracingProvider starts one server span per dispatched method and one
// internal child span per capability invocation
type TracingProvider struct {
	service  string
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
	once     sync.Once
}

// NewTracingProvider builds a batching provider for cfg. Extra options are
// appended, which lets tests attach a span recorder.
func NewTracingProvider(cfg TracingConfig, opts ...sdktrace.TracerProviderOption) (*TracingProvider, error) {
	factory, ok := exporters[cfg.ExporterType]
	if !ok {
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.ExporterType)
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "sdlc-tools-mcp-server"
	}

	exporter, err := factory(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", cfg.ExporterType, err)
	}

	sampler := sdktrace.AlwaysSample()
	if cfg.SampleRate > 0 && cfg.SampleRate < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRate))
	}

	res := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	)

	provider := sdktrace.NewTracerProvider(append([]sdktrace.TracerProviderOption{
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	}, opts...)...)
	if cfg.SetGlobal {
		otel.SetTracerProvider(provider)
	}

	return &TracingProvider{
		service:  cfg.ServiceName,
		provider: provider,
		tracer:   provider.Tracer(instrumentationName),
	}, nil
}

// StartMethodSpan starts the span for one JSON-RPC request, named
// "mcp.<method>"
func (tp *TracingProvider) StartMethodSpan(ctx context.Context, method string) (context.Context, trace.Span) {
	return tp.tracer.Start(ctx, "mcp."+method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			semconv.RPCSystemKey.String("jsonrpc"),
			semconv.RPCServiceKey.String(tp.service),
			semconv.RPCMethodKey.String(method),
		),
	)
}

// StartInvocationSpan starts the span for one tool, resource or prompt,
// named "mcp.<kind> <name>"
func (tp *TracingProvider) StartInvocationSpan(ctx context.Context, kind, name string) (context.Context, trace.Span) {
	return tp.tracer.Start(ctx, "mcp."+kind+" "+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("mcp.capability.kind", kind),
			attribute.String("mcp.capability.name", name),
		),
	)
}

// Shutdown flushes pending spans. Only the first call does anything.
func (tp *TracingProvider) Shutdown(ctx context.Context) error {
	var err error
	tp.once.Do(func() { err = tp.provider.Shutdown(ctx) })
	return err
}

// finishSpan sets the span status from err. Failed spans also carry the
// JSON-RPC error code the client will see.
func finishSpan(span trace.Span, err error) {
	if !span.IsRecording() {
		return
	}
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	code := mcperrors.CodeOf(err)
	span.SetAttributes(
		semconv.RPCJsonrpcErrorCodeKey.Int(code),
		attribute.String("mcp.error.name", mcperrors.CodeName(code)),
	)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

type discardExporter struct{}

func (discardExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }
func (discardExporter) Shutdown(context.Context) error                             { return nil }
