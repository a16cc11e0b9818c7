package command

import (
	"context"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/jonwraymond/memoize/health"
	"github.com/jonwraymond/memoize/internal/workout"
	"github.com/jonwraymond/memoize/observe"
)

// WorkoutCommandBuilder builds the workout subcommand.
func WorkoutCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:  "workout",
		Usage: "generate today's workout plan",
		Flags: []cli.Flag{
			&cli.Uint32Flag{
				Name:    "intensity",
				Aliases: []string{"i"},
				Usage:   "requested intensity; below 25 is strength work",
				Value:   10,
			},
			&cli.Uint32Flag{
				Name:    "random",
				Aliases: []string{"r"},
				Usage:   "random number; 3 turns a hard day into a rest day",
				Value:   7,
			},
			&cli.DurationFlag{
				Name:    "delay",
				Usage:   "how long the intensity calculation takes",
				Value:   workout.DefaultDelay,
				Sources: cli.EnvVars("MEMO_WORKOUT_DELAY"),
			},
		},
		Action: workoutAction,
	}
}

func workoutAction(ctx context.Context, cmd *cli.Command) error {
	s, err := newSession(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.close(ctx)

	g := workout.New(
		workout.WithOutput(cmd.Root().Writer),
		workout.WithDelay(cmd.Duration("delay")),
		workout.WithMiddleware(s.mw),
	)

	start := time.Now()
	plan, err := g.Generate(ctx, cmd.Uint32("intensity"), cmd.Uint32("random"))
	if err != nil {
		return err
	}

	s.watch("workout", health.SizerFunc(func() int { return plan.Entries }))
	s.report(ctx, workout.Meta, plan.Stats)
	s.logger.Debug(ctx, "workout planned",
		observe.Field{Key: "lines", Value: len(plan.Lines)},
		observe.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
	)
	return nil
}
