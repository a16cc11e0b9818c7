// Package command wires the memo CLI.
package command

import (
	"io"
	"sort"

	"github.com/urfave/cli/v3"
)

// Version is stamped at build time.
var Version = "dev"

// InitApp builds the root command. Plan and result lines go to stdout;
// logs and stdout telemetry exporters go to stderr.
func InitApp(stdout, stderr io.Writer) *cli.Command {
	app := &cli.Command{
		Name:      "memo",
		Usage:     "run memoized computations",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     GlobalFlags(),
	}

	app.Commands = append(app.Commands,
		WorkoutCommandBuilder(),
		FibCommandBuilder(),
	)

	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app
}
