package logger

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HeaderTraceParent is the W3C trace context header
const HeaderTraceParent = "traceparent"

var traceContext propagation.TraceContext

// ExtractTrace reads the W3C trace context from h. When a valid traceparent
// is present, ctx carries its span context and its trace ID for WithContext.
func ExtractTrace(ctx context.Context, h http.Header) context.Context {
	ctx = traceContext.Extract(ctx, propagation.HeaderCarrier(h))
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		ctx = WithTraceID(ctx, sc.TraceID().String())
	}
	return ctx
}

// InjectTrace writes the trace context of ctx into h. It is a no-op when ctx
// carries no valid span context.
func InjectTrace(ctx context.Context, h http.Header) {
	traceContext.Inject(ctx, propagation.HeaderCarrier(h))
}
