package observe

import (
	"context"
	"time"
)

// Middleware wraps computations with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: wrapped functions are safe for concurrent use if the
//     underlying computation is.
//   - Context: the span is carried into the wrapped computation's context.
//   - Errors: errors from the computation are recorded and propagated unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a Middleware. Nil components are replaced by no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = &noopLogger{}
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}
	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Wrap returns fn instrumented with a span, compute metrics and a log line
// per run. It only sees cache misses when used as a memo computation.
func Wrap[K, V any](m *Middleware, meta ComputeMeta, fn func(context.Context, K) (V, error)) func(context.Context, K) (V, error) {
	logger := m.logger.WithComputation(meta)

	return func(ctx context.Context, key K) (V, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		v, err := fn(ctx, key)

		duration := time.Since(start)
		m.tracer.EndSpan(span, err)
		m.metrics.RecordCompute(ctx, meta, duration, err)

		fields := []Field{{Key: "duration_ms", Value: float64(duration.Milliseconds())}}
		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			logger.Error(ctx, "computation failed", fields...)
		} else {
			logger.Debug(ctx, "computation completed", fields...)
		}

		return v, err
	}
}

// LookupRecorder reports cache lookups for one computation.
// It satisfies memo.Recorder.
type LookupRecorder struct {
	meta    ComputeMeta
	metrics Metrics
}

// Recorder returns a LookupRecorder bound to meta.
func (m *Middleware) Recorder(meta ComputeMeta) *LookupRecorder {
	return &LookupRecorder{meta: meta, metrics: m.metrics}
}

// RecordLookup records a hit or a miss.
func (r *LookupRecorder) RecordLookup(ctx context.Context, hit bool) {
	r.metrics.RecordLookup(ctx, r.meta, hit)
}
