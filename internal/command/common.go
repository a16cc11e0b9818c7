package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/jonwraymond/memoize/health"
	"github.com/jonwraymond/memoize/memo"
	"github.com/jonwraymond/memoize/observe"
)

// session holds the telemetry and health wiring of one command run.
type session struct {
	obs    observe.Observer
	mw     *observe.Middleware
	logger observe.Logger
	health *health.Aggregator
	warn   int
}

func newSession(ctx context.Context, cmd *cli.Command) (*session, error) {
	traceExporter := cmd.String(traceExporterFlag)
	metricsExporter := cmd.String(metricsExporterFlag)

	cfg := observe.Config{
		ServiceName: "memo",
		Version:     Version,
		Tracing: observe.TracingConfig{
			Enabled:   traceExporter != "none",
			Exporter:  traceExporter,
			SamplePct: cmd.Float(samplePctFlag),
		},
		Metrics: observe.MetricsConfig{
			Enabled:  metricsExporter != "none",
			Exporter: metricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   cmd.String(logLevelFlag),
		},
		Output: cmd.Root().ErrWriter,
	}

	obs, err := observe.NewObserver(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("configure telemetry: %w", err)
	}
	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("configure telemetry: %w", err)
	}

	return &session{
		obs:    obs,
		mw:     mw,
		logger: obs.Logger(),
		health: health.NewAggregator(),
		warn:   cmd.Int(warnEntriesFlag),
	}, nil
}

// watch registers a growth check for cache under name.
func (s *session) watch(name string, cache health.Sizer) {
	s.health.Register(name, health.NewEntriesChecker(name, cache, health.EntriesCheckerConfig{
		Warning: s.warn,
	}))
}

// report logs cache counters and the health of every watched cache.
func (s *session) report(ctx context.Context, meta observe.ComputeMeta, stats memo.Stats) {
	logger := s.logger.WithComputation(meta)
	logger.Debug(ctx, "cache stats",
		observe.Field{Key: "hits", Value: stats.Hits},
		observe.Field{Key: "misses", Value: stats.Misses},
		observe.Field{Key: "computes", Value: stats.Computes},
		observe.Field{Key: "failures", Value: stats.Failures},
		observe.Field{Key: "hit_ratio", Value: stats.HitRatio()},
	)

	report := s.health.Report(ctx)
	fields := []observe.Field{
		{Key: "status", Value: report.Status},
		{Key: "checks", Value: report.Checks},
	}
	if report.Status == health.StatusHealthy.String() {
		logger.Debug(ctx, "cache health", fields...)
		return
	}
	logger.Warn(ctx, "cache health", fields...)
}

func (s *session) close(ctx context.Context) {
	if err := s.obs.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "telemetry shutdown failed", observe.Field{Key: "error", Value: err.Error()})
	}
}
