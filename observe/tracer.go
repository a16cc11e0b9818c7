package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ComputeMeta describes a memoized computation for telemetry purposes.
type ComputeMeta struct {
	ID        string   // Fully qualified ID (namespace.name or just name)
	Namespace string   // Grouping, e.g. the owning package (may be empty)
	Name      string   // Computation name (required)
	Version   string   // Optional
	Tags      []string // Optional
}

// SpanName returns the deterministic span name for this computation.
// Format: memo.compute.<namespace>.<name> or memo.compute.<name>
func (m ComputeMeta) SpanName() string {
	if m.Namespace != "" {
		return "memo.compute." + m.Namespace + "." + m.Name
	}
	return "memo.compute." + m.Name
}

// ComputationID returns the fully qualified identifier.
// If ID is set it wins; otherwise it is built from namespace and name.
func (m ComputeMeta) ComputationID() string {
	if m.ID != "" {
		return m.ID
	}
	if m.Namespace != "" {
		return m.Namespace + "." + m.Name
	}
	return m.Name
}

// Validate checks that the metadata can be used for telemetry.
func (m ComputeMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingComputationName
	}
	return nil
}

func (m ComputeMeta) attributes() []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("memo.id", m.ComputationID()),
		attribute.String("memo.name", m.Name),
	}
	if m.Namespace != "" {
		attrs = append(attrs, attribute.String("memo.namespace", m.Namespace))
	}
	return attrs
}

// Tracer wraps OpenTelemetry tracing with computation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a span for one run of the computation.
	StartSpan(ctx context.Context, meta ComputeMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &otelTracer{tracer: t}
}

// StartSpan starts a span carrying the computation metadata as attributes.
func (t *otelTracer) StartSpan(ctx context.Context, meta ComputeMeta) (context.Context, trace.Span) {
	attrs := append(meta.attributes(), attribute.Bool("memo.error", false))
	if meta.Version != "" {
		attrs = append(attrs, attribute.String("memo.version", meta.Version))
	}
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("memo.tags", meta.Tags))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *otelTracer) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("memo.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{noop: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ComputeMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ error) {
	span.End()
}
