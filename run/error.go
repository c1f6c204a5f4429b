package run

import "github.com/ardnew/chef/lang"

// Error classes. As in package lang, every error wraps one of these
// roots so the CLI can map failures to distinct outcome classes.
var (
	// ErrResolve is the root of graph and plan validation failures.
	// No process has been spawned when it is reported.
	ErrResolve = lang.NewError("resolution error")
	// ErrRuntime is the root of execution failures: a child process
	// failed to spawn or exited non-zero without suppression.
	ErrRuntime = lang.NewError("runtime error")
)

// Predefined errors (sentinel values).
var (
	ErrUnknownRecipe   = lang.NewError("unknown recipe")
	ErrUnknownAlias    = lang.NewError("alias targets unknown recipe")
	ErrDependencyCycle = lang.NewError("dependency cycle")
	ErrTooFewArguments = lang.NewError("too few arguments")
	ErrTooManyArgs     = lang.NewError("too many arguments")
	ErrRecipeFailed    = lang.NewError("recipe failed")
	ErrSpawnFailed     = lang.NewError("failed to spawn command")
	ErrInterrupted     = lang.NewError("interrupted")
	ErrNotConfirmed    = lang.NewError("recipe not confirmed")
	ErrNoRecipes       = lang.NewError("no recipes defined")
)
