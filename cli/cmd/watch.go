package cmd

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/chef/lang"
	"github.com/ardnew/chef/log"
	"github.com/ardnew/chef/run"
)

// watchSettle is how long the watcher waits after the last event before
// re-running, so editors that write in bursts trigger a single run.
const watchSettle = 100 * time.Millisecond

// Watch runs the requested recipes, then re-runs them whenever the
// recipe file or any of its imports changes.
type Watch struct {
	Targets []string `arg:"" optional:"" help:"Recipes to run, each followed by its arguments" name:"targets"`

	Quiet bool     `help:"Suppress command echo"                    short:"q"`
	Yes   bool     `help:"Answer confirmation prompts affirmatively" short:"y"`
	Shell []string `help:"Override the shell command and arguments"`
}

// Run executes the watch command. It returns when the context is
// cancelled; run failures are reported and watched through, not fatal.
func (w *Watch) Run(ctx context.Context) error {
	file, err := load(ctx)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return run.ErrRuntime.Wrap(err)
	}
	defer watcher.Close()

	// Watch directories rather than files so replace-by-rename saves
	// are observed.
	watched, err := w.addSources(watcher, file)
	if err != nil {
		return err
	}

	logger := log.Default()

	w.runOnce(ctx, file, logger)

	var settle *time.Timer

	settled := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.Warn("watch error", slog.Any("error", err))

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !event.Op.Has(fsnotify.Write) &&
				!event.Op.Has(fsnotify.Create) &&
				!event.Op.Has(fsnotify.Rename) {
				continue
			}

			if !watched[filepath.Clean(event.Name)] {
				continue
			}

			logger.Debug("source changed",
				slog.String("path", event.Name),
				slog.String("op", event.Op.String()),
			)

			if settle == nil {
				settle = time.AfterFunc(watchSettle, func() {
					settled <- struct{}{}
				})
			} else {
				settle.Reset(watchSettle)
			}

		case <-settled:
			settle = nil

			file, err = load(ctx)
			if err != nil {
				logger.Error("reload failed", slog.Any("error", err))

				continue
			}

			w.runOnce(ctx, file, logger)
		}
	}
}

// addSources watches the directories containing the recipe file and its
// imports, and returns the set of file paths whose events matter.
func (w *Watch) addSources(
	watcher *fsnotify.Watcher,
	file *lang.File,
) (map[string]bool, error) {
	watched := make(map[string]bool)
	dirs := make(map[string]bool)

	add := func(path string) error {
		watched[filepath.Clean(path)] = true

		dir := filepath.Dir(path)
		if dirs[dir] {
			return nil
		}

		dirs[dir] = true

		if err := watcher.Add(dir); err != nil {
			return run.ErrRuntime.Wrap(err).With(slog.String("dir", dir))
		}

		return nil
	}

	if err := add(file.Path); err != nil {
		return nil, err
	}

	root := filepath.Dir(file.Path)

	for _, imp := range file.Imports {
		path := imp.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}

		if err := add(path); err != nil {
			return nil, err
		}
	}

	return watched, nil
}

// runOnce builds a fresh runner and executes the requested targets,
// logging failures instead of returning them.
func (w *Watch) runOnce(ctx context.Context, file *lang.File, logger log.Logger) {
	runner, err := run.New(ctx, file, run.Config{
		Quiet:  w.Quiet,
		Yes:    w.Yes,
		Shell:  w.Shell,
		Logger: logger,
	})
	if err != nil {
		logger.Error("run failed", slog.Any("error", err))

		return
	}

	reqs, err := groupRequests(runner.Graph(), w.Targets)
	if err != nil {
		logger.Error("run failed", slog.Any("error", err))

		return
	}

	if err := runner.Run(ctx, reqs...); err != nil {
		logger.Error("run failed", slog.Any("error", err))
	}
}
