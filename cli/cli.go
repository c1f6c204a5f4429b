package cli

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/chef/cli/cmd"
	"github.com/ardnew/chef/pkg"
)

// CLI is the top-level command-line interface for chef.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	File    string           `help:"Recipe file to use instead of searching for one" name:"file" short:"f" type:"path" placeholder:"PATH"`
	Version kong.VersionFlag `help:"Print version and exit" short:"V"`

	Init   cmd.Init   `cmd:"" help:"Create a starter recipe file"`
	List   cmd.List   `cmd:"" help:"List public recipes with their parameters"`
	Dump   cmd.Dump   `cmd:"" help:"Print the parsed recipe file"`
	Choose cmd.Choose `cmd:"" help:"Pick a recipe to run interactively"`
	Watch  cmd.Watch  `cmd:"" help:"Re-run recipes whenever their sources change"`

	Run cmd.Run `cmd:"" default:"withargs" help:"Run recipes"`
}

// Run executes the chef CLI with the given context and arguments.
// The exit function is called with the appropriate exit code when a
// command terminates the program early (for example, --help).
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		cli.Log.vars().
			CloneWith(cli.Pprof.vars()).
			CloneWith(kong.Vars{
				"version": pkg.Name + " " + strings.TrimSpace(pkg.Version),
			}),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithRecipePath(ctx, cli.File)

	// Finalize logger configuration with all parsed values, including
	// those resolved from defaults.
	cli.Log.start(ctx)

	// [pprofConfig.start] is a no-op unless built with tag pprof and
	// enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}
