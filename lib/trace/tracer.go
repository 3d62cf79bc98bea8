package trace

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "pageflow.navigation"

// Tracer generates spans for navigation and entity operations. Every span
// carries the session metadata given at construction.
type Tracer struct {
	trace.Tracer

	metadata []attribute.KeyValue
}

// NewTracer creates a new Tracer from the given TracerProvider.
func NewTracer(tp trace.TracerProvider, metadata map[string]string, options ...trace.TracerOption) *Tracer {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	meta := make([]attribute.KeyValue, 0, len(metadata))
	for _, k := range keys {
		meta = append(meta, attribute.String(k, metadata[k]))
	}

	return &Tracer{
		Tracer:   tp.Tracer(tracerName, options...),
		metadata: meta,
	}
}

// Start overrides the underlying OTEL tracer method to include the tracer metadata.
func (t *Tracer) Start(
	ctx context.Context, spanName string, opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	opts = append(opts, trace.WithAttributes(t.metadata...))
	return t.Tracer.Start(ctx, spanName, opts...)
}

// TraceNavigation starts the span for reaching a single destination.
// Prerequisite navigations started from the returned context become children.
func (t *Tracer) TraceNavigation(ctx context.Context, entity, destination string) (context.Context, trace.Span) {
	return t.Start(ctx, "navigate "+entity+"."+destination,
		trace.WithAttributes(
			attribute.String("pageflow.entity", entity),
			attribute.String("pageflow.destination", destination),
		))
}

// TraceOperation starts the span of an entity operation such as
// ContentView.publish.
func (t *Tracer) TraceOperation(ctx context.Context, entity, operation string) (context.Context, trace.Span) {
	return t.Start(ctx, entity+"."+operation,
		trace.WithAttributes(
			attribute.String("pageflow.entity", entity),
			attribute.String("pageflow.operation", operation),
		))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
