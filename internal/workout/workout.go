// Package workout plans a day's exercise around a slow intensity
// calculation that is memoized for the length of one plan.
package workout

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonwraymond/memoize/memo"
	"github.com/jonwraymond/memoize/observe"
)

// DefaultDelay is how long the intensity calculation takes by default.
const DefaultDelay = 2 * time.Second

// lowIntensity is the bound below which a plan is strength work.
const lowIntensity = 25

// restDay is the random number that turns a high-intensity day into a rest day.
const restDay = 3

// Meta identifies the intensity calculation in telemetry.
var Meta = observe.ComputeMeta{Namespace: "workout", Name: "intensity"}

// Plan is the outcome of one Generate call.
type Plan struct {
	Lines   []string
	Stats   memo.Stats
	Entries int
}

// Option configures a Generator.
type Option func(*Generator)

// WithOutput directs progress and plan lines to w.
func WithOutput(w io.Writer) Option {
	return func(g *Generator) {
		if w != nil {
			g.out = w
		}
	}
}

// WithDelay sets how long one intensity calculation takes.
func WithDelay(d time.Duration) Option {
	return func(g *Generator) {
		if d >= 0 {
			g.delay = d
		}
	}
}

// WithMiddleware instruments each calculation with mw.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(g *Generator) {
		g.mw = mw
	}
}

// Generator produces workout plans.
type Generator struct {
	out   io.Writer
	delay time.Duration
	mw    *observe.Middleware
}

// New creates a Generator writing to stdout with DefaultDelay.
func New(opts ...Option) *Generator {
	g := &Generator{
		out:   os.Stdout,
		delay: DefaultDelay,
		mw:    observe.NewMiddleware(nil, nil, nil),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate writes and returns the plan for intensity and randomNumber.
// The calculation runs at most once per plan, however many lines use it.
// If ctx ends during a calculation the error is returned and nothing is
// remembered.
func (g *Generator) Generate(ctx context.Context, intensity, randomNumber uint32) (Plan, error) {
	calculate := observe.Wrap(g.mw, Meta, g.calculate)
	cache := memo.New(func(n uint32) (uint32, error) {
		return calculate(ctx, n)
	})

	var lines []string
	emit := func(format string, args ...any) {
		line := fmt.Sprintf(format, args...)
		lines = append(lines, line)
		_, _ = fmt.Fprintln(g.out, line)
	}
	plan := func() Plan {
		return Plan{Lines: lines, Stats: cache.Stats(), Entries: cache.Len()}
	}

	if intensity < lowIntensity {
		pushups, err := cache.Value(intensity)
		if err != nil {
			return plan(), err
		}
		emit("Today, do %d pushups!", pushups)

		situps, err := cache.Value(intensity)
		if err != nil {
			return plan(), err
		}
		emit("Next, do %d situps!", situps)
		return plan(), nil
	}

	if randomNumber == restDay {
		emit("Take a break today! Remember to stay hydrated!")
		return plan(), nil
	}

	minutes, err := cache.Value(intensity)
	if err != nil {
		return plan(), err
	}
	emit("Today, run for %d minutes!", minutes)
	return plan(), nil
}

// calculate stands in for an expensive computation: it announces itself,
// takes delay, and returns its input.
func (g *Generator) calculate(ctx context.Context, n uint32) (uint32, error) {
	_, _ = fmt.Fprintln(g.out, "calculating slowly...")

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return n, nil
}
