package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Metrics records computation and lookup metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCompute records one run of a computation.
	RecordCompute(ctx context.Context, meta ComputeMeta, duration time.Duration, err error)

	// RecordLookup records a cache lookup as a hit or a miss.
	RecordLookup(ctx context.Context, meta ComputeMeta, hit bool)
}

type otelMetrics struct {
	computeTotal  metric.Int64Counter
	computeErrors metric.Int64Counter
	computeMillis metric.Float64Histogram
	lookupHits    metric.Int64Counter
	lookupMisses  metric.Int64Counter
}

// NewMetrics creates the memo instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	var (
		m   otelMetrics
		err error
	)

	if m.computeTotal, err = meter.Int64Counter(
		"memo.compute.total",
		metric.WithDescription("Total number of computations run on cache misses"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}

	if m.computeErrors, err = meter.Int64Counter(
		"memo.compute.errors",
		metric.WithDescription("Total number of failed computations"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}

	if m.computeMillis, err = meter.Float64Histogram(
		"memo.compute.duration_ms",
		metric.WithDescription("Computation duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}

	if m.lookupHits, err = meter.Int64Counter(
		"memo.lookup.hits",
		metric.WithDescription("Lookups answered from stored values"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}

	if m.lookupMisses, err = meter.Int64Counter(
		"memo.lookup.misses",
		metric.WithDescription("Lookups that found no stored value"),
		metric.WithUnit("{lookup}"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

func (m *otelMetrics) RecordCompute(ctx context.Context, meta ComputeMeta, duration time.Duration, err error) {
	opt := metric.WithAttributes(meta.attributes()...)

	m.computeTotal.Add(ctx, 1, opt)
	if err != nil {
		m.computeErrors.Add(ctx, 1, opt)
	}
	m.computeMillis.Record(ctx, float64(duration)/float64(time.Millisecond), opt)
}

func (m *otelMetrics) RecordLookup(ctx context.Context, meta ComputeMeta, hit bool) {
	opt := metric.WithAttributes(meta.attributes()...)
	if hit {
		m.lookupHits.Add(ctx, 1, opt)
		return
	}
	m.lookupMisses.Add(ctx, 1, opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordCompute(context.Context, ComputeMeta, time.Duration, error) {}

func (noopMetrics) RecordLookup(context.Context, ComputeMeta, bool) {}
