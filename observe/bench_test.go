package observe

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"
)

func BenchmarkLogger_Info(b *testing.B) {
	logger := NewLoggerWithWriter("info", io.Discard)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info(ctx, "benchmark message", Field{Key: "iteration", Value: i})
	}
}

// BenchmarkLogger_LevelFiltering measures the cost of filtered calls.
func BenchmarkLogger_LevelFiltering(b *testing.B) {
	logger := NewLoggerWithWriter("error", io.Discard)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Debug(ctx, "filtered debug")
		logger.Info(ctx, "filtered info")
	}
}

func BenchmarkLogger_WithComputation(b *testing.B) {
	logger := NewLoggerWithWriter("info", io.Discard)
	meta := ComputeMeta{Namespace: "ns", Name: "bench", Version: "1.0.0"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = logger.WithComputation(meta)
	}
}

func BenchmarkMetrics_RecordCompute(b *testing.B) {
	ctx := context.Background()
	obs, err := NewObserver(ctx, Config{
		ServiceName: "bench",
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
	})
	if err != nil {
		b.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(ctx)

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		b.Fatalf("NewMetrics() error = %v", err)
	}
	meta := ComputeMeta{Namespace: "ns", Name: "bench"}
	computeErr := errors.New("benchmark error")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		metrics.RecordCompute(ctx, meta, 100*time.Millisecond, computeErr)
	}
}

// BenchmarkWrap measures the full middleware path around a trivial computation.
func BenchmarkWrap(b *testing.B) {
	ctx := context.Background()
	obs, err := NewObserver(ctx, Config{
		ServiceName: "bench",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
	})
	if err != nil {
		b.Fatalf("NewObserver() error = %v", err)
	}
	defer obs.Shutdown(ctx)

	mw, err := MiddlewareFromObserver(obs)
	if err != nil {
		b.Fatalf("MiddlewareFromObserver() error = %v", err)
	}
	fn := Wrap(mw, ComputeMeta{Name: "identity"}, func(_ context.Context, n int) (int, error) {
		return n, nil
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fn(ctx, i)
	}
}
