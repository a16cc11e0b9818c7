package command

import (
	"github.com/urfave/cli/v3"

	"github.com/jonwraymond/memoize/observe"
)

const (
	logLevelFlag        = "log-level"
	traceExporterFlag   = "trace-exporter"
	metricsExporterFlag = "metrics-exporter"
	samplePctFlag       = "sample-pct"
	warnEntriesFlag     = "warn-entries"
)

// GlobalFlags are accepted before any subcommand.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:      logLevelFlag,
			Usage:     "log level (debug|info|warn|error)",
			Value:     "info",
			Sources:   cli.EnvVars("MEMO_LOG_LEVEL"),
			Validator: oneOf(observe.ValidLogLevels),
		},
		&cli.StringFlag{
			Name:      traceExporterFlag,
			Usage:     "trace exporter (otlp|jaeger|stdout|none)",
			Value:     "none",
			Sources:   cli.EnvVars("MEMO_TRACE_EXPORTER"),
			Validator: oneOf(observe.ValidTracingExporters),
		},
		&cli.StringFlag{
			Name:      metricsExporterFlag,
			Usage:     "metrics exporter (otlp|prometheus|stdout|none)",
			Value:     "none",
			Sources:   cli.EnvVars("MEMO_METRICS_EXPORTER"),
			Validator: oneOf(observe.ValidMetricsExporters),
		},
		&cli.FloatFlag{
			Name:    samplePctFlag,
			Usage:   "fraction of computations traced, 0.0-1.0",
			Value:   1.0,
			Sources: cli.EnvVars("MEMO_SAMPLE_PCT"),
		},
		&cli.IntFlag{
			Name:    warnEntriesFlag,
			Usage:   "cache entry count reported as degraded",
			Value:   10_000,
			Sources: cli.EnvVars("MEMO_WARN_ENTRIES"),
		},
	}
}
