package run

import (
	"log/slog"
	"strings"

	"github.com/ardnew/chef/lang"
	"github.com/ardnew/chef/log"
)

// Graph is the validated dependency graph: every alias targets a real
// recipe, every dependency reference resolves with a compatible argument
// count, and no recipe depends on itself transitively. Nodes are recipe
// names; edges carry the bound argument expressions recorded in the AST.
type Graph struct {
	file   *lang.File
	logger log.Logger
}

// Resolve validates the recipe table of a parsed file and returns its
// dependency graph. All resolution errors are detected here, before any
// planning or execution.
func Resolve(file *lang.File, logger log.Logger) (*Graph, error) {
	g := &Graph{file: file, logger: logger}

	for _, alias := range file.Aliases {
		if _, ok := file.Recipe(alias.Target); !ok {
			return nil, ErrResolve.Wrap(
				ErrUnknownAlias.At(alias.Pos).
					With(
						slog.String("alias", alias.Name),
						slog.String("target", alias.Target),
					),
			)
		}
	}

	for _, recipe := range file.Recipes {
		for _, dep := range recipe.Dependencies {
			target, ok := g.Lookup(dep.Target)
			if !ok {
				return nil, ErrResolve.Wrap(
					ErrUnknownRecipe.At(dep.Pos).
						With(
							slog.String("recipe", recipe.Name),
							slog.String("dependency", dep.Target),
						),
				)
			}

			if err := checkEdgeArity(recipe, dep, target); err != nil {
				return nil, err
			}
		}
	}

	if err := g.checkCycles(); err != nil {
		return nil, err
	}

	logger.Debug("graph resolved",
		slog.Int("recipes", len(file.Recipes)),
		slog.Int("aliases", len(file.Aliases)),
	)

	return g, nil
}

// Lookup resolves a name to a recipe, following one level of alias
// indirection.
func (g *Graph) Lookup(name string) (*lang.Recipe, bool) {
	if r, ok := g.file.Recipe(name); ok {
		return r, true
	}

	if a, ok := g.file.Alias(name); ok {
		return g.file.Recipe(a.Target)
	}

	return nil, false
}

// File returns the parsed file underlying the graph.
func (g *Graph) File() *lang.File { return g.file }

// checkEdgeArity validates a dependency edge's argument count against
// the target's parameters. Missing arguments are permitted only where
// the target supplies defaults.
func checkEdgeArity(from *lang.Recipe, dep lang.Dependency, target *lang.Recipe) error {
	attrs := []slog.Attr{
		slog.String("recipe", from.Name),
		slog.String("dependency", dep.Target),
		slog.Int("got", len(dep.Arguments)),
	}

	if len(dep.Arguments) < target.MinArity() {
		return ErrResolve.Wrap(
			ErrTooFewArguments.At(dep.Pos).
				With(append(attrs, slog.Int("required", target.MinArity()))...),
		)
	}

	if max := target.MaxArity(); max >= 0 && len(dep.Arguments) > max {
		return ErrResolve.Wrap(
			ErrTooManyArgs.At(dep.Pos).
				With(append(attrs, slog.Int("accepted", max))...),
		)
	}

	return nil
}

// visitState marks depth-first traversal progress for cycle detection.
type visitState int

const (
	unvisited visitState = iota
	visiting
	visited
)

// checkCycles runs a depth-first traversal over every recipe; an edge
// back to a node still marked visiting is a cycle, reported with the
// full path of recipe names.
func (g *Graph) checkCycles() error {
	state := make(map[string]visitState, len(g.file.Recipes))

	var path []string

	var visit func(r *lang.Recipe) error

	visit = func(r *lang.Recipe) error {
		switch state[r.Name] {
		case visited:
			return nil

		case visiting:
			start := 0

			for i, name := range path {
				if name == r.Name {
					start = i

					break
				}
			}

			cycle := append(append([]string{}, path[start:]...), r.Name)

			return ErrResolve.Wrap(
				ErrDependencyCycle.At(r.Pos).
					With(slog.String("cycle", strings.Join(cycle, " -> "))),
			)
		}

		state[r.Name] = visiting
		path = append(path, r.Name)

		for _, dep := range r.Dependencies {
			target, _ := g.Lookup(dep.Target)
			if err := visit(target); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		state[r.Name] = visited

		return nil
	}

	for _, r := range g.file.Recipes {
		if err := visit(r); err != nil {
			return err
		}
	}

	return nil
}
