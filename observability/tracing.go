package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/eventdesk"

// Tracer provides OpenTelemetry tracing for eventdesk.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global otel TracerProvider.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(tracerName),
	}
}

// StartRequestSpan starts a client span for one API request.
func (t *Tracer) StartRequestSpan(ctx context.Context, method, path, requestID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "eventdesk.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("eventdesk.path", path),
			attribute.String("eventdesk.request_id", requestID),
		),
	)
}

// EndRequestSpan ends a request span with result attributes.
func (t *Tracer) EndRequestSpan(span trace.Span, statusCode int, latencyMs int64, err string) {
	span.SetAttributes(
		attribute.Int("http.status_code", statusCode),
		attribute.Int64("eventdesk.latency_ms", latencyMs),
	)
	if err != "" {
		span.SetStatus(codes.Error, err)
	}
	span.End()
}

// StartFetchSpan starts a span covering one event list fetch.
func (t *Tracer) StartFetchSpan(ctx context.Context, seq uint64, query string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "eventdesk.list.fetch",
		trace.WithAttributes(
			attribute.Int64("eventdesk.fetch_seq", int64(seq)),
			attribute.String("eventdesk.query", query),
		),
	)
}

// EndFetchSpan ends a fetch span, tagging the outcome.
func (t *Tracer) EndFetchSpan(span trace.Span, outcome string) {
	span.SetAttributes(attribute.String("eventdesk.outcome", outcome))
	span.End()
}
