package run

import (
	"context"
	"log/slog"

	"github.com/ardnew/chef/lang"
)

// Runner is the narrow interface this engine exposes to its callers:
// plan and execute requested recipes, and list public recipe signatures.
// A Runner is safe to construct repeatedly over the same file with
// different configurations.
type Runner struct {
	file   *lang.File
	cfg    Config
	graph  *Graph
	env    *lang.Env
	dotenv map[string]string

	// values holds every assignment, evaluated once during New.
	values map[string]string
}

// New validates the parsed file and prepares it for execution: the
// dependency graph is resolved, the dotenv file is loaded when enabled,
// and every assignment is evaluated (rejecting variable-definition
// cycles). Any error here means no process will be spawned.
func New(ctx context.Context, file *lang.File, cfg Config) (*Runner, error) {
	cfg = cfg.normalize(file)

	graph, err := Resolve(file, cfg.Logger)
	if err != nil {
		return nil, err
	}

	var dotenv map[string]string

	if file.Settings.DotenvLoad {
		dotenv, err = loadDotenv(cfg.WorkingDir)
		if err != nil {
			return nil, err
		}

		cfg.Logger.Debug("dotenv loaded", slog.Int("vars", len(dotenv)))
	}

	env := lang.NewEnv(file,
		lang.WithDotenv(dotenv),
		lang.WithWorkingDir(cfg.WorkingDir),
		lang.WithInvocationDir(cfg.InvocationDir),
		lang.WithShell(cfg.Shell),
	)

	values, err := env.EvaluateAll(ctx)
	if err != nil {
		return nil, err
	}

	return &Runner{
		file:   file,
		cfg:    cfg,
		graph:  graph,
		env:    env,
		dotenv: dotenv,
		values: values,
	}, nil
}

// File returns the parsed file the runner was built from.
func (r *Runner) File() *lang.File { return r.file }

// Graph returns the validated dependency graph.
func (r *Runner) Graph() *Graph { return r.graph }

// Run plans the requested targets and executes the resulting plan.
// With no requests, the file's default (first) recipe runs.
func (r *Runner) Run(ctx context.Context, reqs ...Request) error {
	plan, err := r.Plan(ctx, reqs...)
	if err != nil {
		return err
	}

	return r.Execute(ctx, plan)
}
