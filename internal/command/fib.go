package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/memoize/health"
	"github.com/jonwraymond/memoize/internal/fib"
	"github.com/jonwraymond/memoize/memo"
	"github.com/jonwraymond/memoize/observe"
	"github.com/jonwraymond/memoize/resilience"
)

var errMissingN = errors.New("fib: at least one N is required")

var fibMeta = observe.ComputeMeta{Namespace: "fib", Name: "nth"}

// FibCommandBuilder builds the fib subcommand.
func FibCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:      "fib",
		Usage:     "print the Nth Fibonacci number for each N",
		ArgsUsage: "N [N...]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:      "workers",
				Aliases:   []string{"w"},
				Usage:     "arguments computed at once",
				Value:     4,
				Sources:   cli.EnvVars("MEMO_FIB_WORKERS"),
				Validator: atLeast(1),
			},
			&cli.DurationFlag{
				Name:      "timeout",
				Usage:     "limit on one computation, and on waiting for a worker",
				Value:     30 * time.Second,
				Sources:   cli.EnvVars("MEMO_FIB_TIMEOUT"),
				Validator: atLeast(time.Millisecond),
			},
		},
		Action: fibAction,
	}
}

func fibAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return errMissingN
	}

	ns := make([]int, 0, cmd.Args().Len())
	for _, arg := range cmd.Args().Slice() {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("fib: invalid N %q: %w", arg, err)
		}
		ns = append(ns, n)
	}

	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	// One Sequence is shared by every argument; it is not goroutine-safe.
	var mu sync.Mutex
	seq := fib.NewSequence()
	nth := func(_ context.Context, n int) (uint64, error) {
		mu.Lock()
		defer mu.Unlock()
		return seq.Nth(n)
	}

	workers := cmd.Int("workers")
	timeout := cmd.Duration("timeout")
	exec := resilience.NewExecutor(resilience.WithTimeout(timeout))
	bulkhead := resilience.NewBulkhead(resilience.BulkheadConfig{
		MaxConcurrent: workers,
		MaxWait:       timeout,
	})
	values := memo.NewConcurrent(
		observe.Wrap(s.mw, fibMeta, resilience.Load(exec, nth)),
		memo.WithRecorder(s.mw.Recorder(fibMeta)),
		memo.WithLimiter(bulkhead),
	)

	results := make([]uint64, len(ns))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range ns {
		g.Go(func() error {
			v, err := values.Value(gctx, n)
			results[i] = v
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, n := range ns {
		_, _ = fmt.Fprintf(cmd.Root().Writer, "fib(%d) = %d\n", n, results[i])
	}

	s.watch("fib", health.SizerFunc(func() int {
		mu.Lock()
		defer mu.Unlock()
		return seq.Len()
	}))
	s.report(ctx, fibMeta, seq.Stats())

	lookups := values.Stats()
	s.logger.Debug(ctx, "argument lookups",
		observe.Field{Key: "hits", Value: lookups.Hits},
		observe.Field{Key: "misses", Value: lookups.Misses},
		observe.Field{Key: "computes", Value: lookups.Computes},
		observe.Field{Key: "peak_workers", Value: bulkhead.Metrics().MaxActive},
	)
	return nil
}
