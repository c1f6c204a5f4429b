package cmd

import (
	"context"
	"errors"

	"github.com/ardnew/chef/log"
	"github.com/ardnew/chef/run"
)

// Run executes recipes from the nearest recipe file. It is the default
// command, so `chef build` and `chef run build` are equivalent.
type Run struct {
	Targets []string `arg:"" optional:"" help:"Recipes to run, each followed by its arguments" name:"targets"`

	DryRun bool     `help:"Print commands without running them"      short:"n"`
	Quiet  bool     `help:"Suppress command echo"                    short:"q"`
	Yes    bool     `help:"Answer confirmation prompts affirmatively" short:"y"`
	Shell  []string `help:"Override the shell command and arguments"`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) error {
	file, err := load(ctx)
	if err != nil {
		// Invoking chef with no recipe file anywhere is more likely a
		// discovery problem than a scripting one, so show usage too.
		if errors.Is(err, ErrNoRecipeFile) {
			if ktx := kongContextFrom(ctx); ktx != nil {
				_ = ktx.PrintUsage(false)
			}
		}

		return err
	}

	runner, err := run.New(ctx, file, r.config())
	if err != nil {
		return err
	}

	reqs, err := groupRequests(runner.Graph(), r.Targets)
	if err != nil {
		return err
	}

	return runner.Run(ctx, reqs...)
}

func (r *Run) config() run.Config {
	return run.Config{
		Shell:  r.Shell,
		DryRun: r.DryRun,
		Quiet:  r.Quiet,
		Yes:    r.Yes,
		Logger: log.Default(),
	}
}
