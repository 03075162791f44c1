package observability

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	mcperrors "github.com/sdlc-tools/mcp-server/pkg/errors"
	"github.com/sdlc-tools/mcp-server/pkg/logging"
	"github.com/sdlc-tools/mcp-server/pkg/server"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Observability combines tracing and metrics around dispatch. Either
// provider may be nil.
type Observability struct {
	tracer  *TracingProvider
	metrics MetricsProvider
}

// New creates an Observability from optional providers
func New(tracer *TracingProvider, metrics MetricsProvider) *Observability {
	return &Observability{tracer: tracer, metrics: metrics}
}

// Middleware records one span and one request metric per dispatched method
func (o *Observability) Middleware() server.Middleware {
	return func(method string, next server.Handler) server.Handler {
		return func(ctx context.Context, params json.RawMessage) (interface{}, error) {
			var span trace.Span
			if o.tracer != nil {
				ctx, span = o.tracer.StartMethodSpan(ctx, method)
				defer span.End()
				if id := logging.RequestIDFromContext(ctx); id != "" {
					span.SetAttributes(attribute.String("mcp.request_id", id))
				}
			}

			if o.metrics != nil {
				o.metrics.RecordInFlight(ctx, method, 1)
				defer o.metrics.RecordInFlight(ctx, method, -1)
			}

			start := time.Now()
			result, err := next(ctx, params)
			elapsed := time.Since(start)

			if span != nil {
				finishSpan(span, err)
			}
			if o.metrics != nil {
				if err != nil {
					o.metrics.RecordError(ctx, method, mcperrors.CodeOf(err))
				}
				o.metrics.RecordRequest(ctx, method, status(err), elapsed)
			}
			return result, err
		}
	}
}

// Interceptor records a child span and a per-capability duration metric
// for every tool call, resource read and prompt get
func (o *Observability) Interceptor() server.Interceptor {
	return func(ctx context.Context, kind, name string, next server.InvokeFunc) (interface{}, error) {
		var span trace.Span
		if o.tracer != nil {
			ctx, span = o.tracer.StartInvocationSpan(ctx, kind, name)
			defer span.End()
		}

		start := time.Now()
		result, err := next(ctx)
		elapsed := time.Since(start)

		if span != nil {
			finishSpan(span, err)
		}
		if o.metrics == nil {
			return result, err
		}
		switch kind {
		case mcperrors.KindTool:
			o.metrics.RecordToolCall(ctx, name, status(err), elapsed)
		case mcperrors.KindResource:
			o.metrics.RecordResourceRead(ctx, name, status(err), elapsed)
		case mcperrors.KindPrompt:
			o.metrics.RecordPromptGet(ctx, name, status(err), elapsed)
		}
		return result, err
	}
}

func status(err error) string {
	if err != nil {
		return statusError
	}
	return statusSuccess
}

// Shutdown stops both providers
func (o *Observability) Shutdown(ctx context.Context) error {
	var errs []error
	if o.metrics != nil {
		errs = append(errs, o.metrics.Shutdown(ctx))
	}
	if o.tracer != nil {
		errs = append(errs, o.tracer.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
