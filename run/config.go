package run

import (
	"io"
	"os"
	"path/filepath"

	"github.com/ardnew/chef/lang"
	"github.com/ardnew/chef/log"
)

// Config is the immutable runtime configuration threaded through
// planning and execution. The zero value is usable; [Config.normalize]
// fills every default. Construct one per run; the same engine can be
// invoked repeatedly with different configurations without shared state.
type Config struct {
	// Shell overrides the recipe file's shell setting when non-empty.
	Shell []string
	// WorkingDir is where recipes run. Defaults to the directory
	// containing the recipe file.
	WorkingDir string
	// InvocationDir is the directory chef was invoked from, reported by
	// the invocation_directory built-in and used by no-cd recipes.
	InvocationDir string
	// DryRun renders and prints commands without spawning processes.
	DryRun bool
	// Quiet suppresses command echoing for every recipe.
	Quiet bool
	// Yes answers confirmation prompts affirmatively.
	Yes bool

	// Stdin, Stdout, and Stderr are the child process streams and the
	// echo/prompt destinations. They default to the os streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger log.Logger
}

// normalize returns a copy of the configuration with defaults filled in
// from the recipe file and process state.
func (c Config) normalize(file *lang.File) Config {
	if len(c.Shell) == 0 {
		c.Shell = file.Settings.ShellArgv()
	}

	if c.WorkingDir == "" && file.Path != "" {
		c.WorkingDir = filepath.Dir(file.Path)
	}

	if c.InvocationDir == "" {
		if wd, err := os.Getwd(); err == nil {
			c.InvocationDir = wd
		}
	}

	if c.WorkingDir == "" {
		c.WorkingDir = c.InvocationDir
	}

	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}

	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}

	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	return c
}
