package cli

import (
	"errors"
	"log/slog"

	"github.com/ardnew/chef/lang"
	"github.com/ardnew/chef/log"
	"github.com/ardnew/chef/run"
)

// Exit codes, by failure class. Failures before any process spawns are
// distinguishable from failures of the recipes themselves.
const (
	ExitOK      = 0
	ExitRuntime = 1
	ExitResolve = 2
	ExitSyntax  = 3
)

// ExitCode maps an error returned by [Run] to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK

	case errors.Is(err, lang.ErrLex),
		errors.Is(err, lang.ErrParse),
		errors.Is(err, lang.ErrLoad):
		return ExitSyntax

	case errors.Is(err, run.ErrResolve),
		errors.Is(err, lang.ErrEval):
		return ExitResolve

	default:
		return ExitRuntime
	}
}

// Report logs the error unless execution already reported it, then
// returns the exit code. Recipe failures print their own message when
// they happen, honoring each recipe's exit-message preference.
func Report(err error) int {
	if err != nil &&
		!errors.Is(err, run.ErrRecipeFailed) &&
		!errors.Is(err, run.ErrNotConfirmed) {
		log.Error("run failed",
			slog.Any("error", err),
		) // slog automatically uses LogValue()
	}

	return ExitCode(err)
}
