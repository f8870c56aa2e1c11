package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Tracer wraps an OpenTelemetry tracer.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer using tp.
func NewTracer(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

// NewNoopTracer creates a tracer that does nothing.
func NewNoopTracer() *Tracer {
	return &Tracer{tracer: tracenoop.NewTracerProvider().Tracer("")}
}

// StartRequest starts a client span for a backend request.
func (t *Tracer) StartRequest(ctx context.Context, method, path, requestID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "storefront.api "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrHTTPMethod, method),
			attribute.String(AttrURLPath, path),
			attribute.String(AttrRequestID, requestID),
		),
	)
}

// StartFetch starts a span for a list cache fetch.
func (t *Tracer) StartFetch(ctx context.Context, key string, force bool) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "storefront.cache.fetch", trace.WithAttributes(
		attribute.String(AttrCacheKey, key),
		attribute.Bool("storefront.cache.force", force),
	))
}

// RecordError marks span as failed. code is the backend error code, if any.
func RecordError(span trace.Span, err error, code string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if code != "" {
		span.SetAttributes(attribute.String(AttrErrorCode, code))
	}
}

// SetStatus records the HTTP status on span.
func SetStatus(span trace.Span, status int) {
	span.SetAttributes(attribute.Int(AttrHTTPStatus, status))
}
