package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/chef/cli/choose"
	"github.com/ardnew/chef/log"
	"github.com/ardnew/chef/run"
)

// Choose presents an interactive picker over the public recipes and
// runs the selection.
type Choose struct {
	DryRun bool `help:"Print commands without running them" short:"n"`
	Yes    bool `help:"Answer confirmation prompts affirmatively" short:"y"`
}

// Run executes the choose command.
func (c *Choose) Run(ctx context.Context) error {
	file, err := load(ctx)
	if err != nil {
		return err
	}

	name, err := choose.Pick(ctx, run.Signatures(file))
	if err != nil {
		if errors.Is(err, choose.ErrCancelled) {
			log.Default().DebugContext(ctx, "selection cancelled")

			return nil
		}

		return err
	}

	log.Default().DebugContext(ctx, "recipe selected",
		slog.String("recipe", name),
	)

	runner, err := run.New(ctx, file, run.Config{
		DryRun: c.DryRun,
		Yes:    c.Yes,
		Logger: log.Default(),
	})
	if err != nil {
		return err
	}

	return runner.Run(ctx, run.Request{Target: name})
}
