package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/ardnew/chef/lang"
	"github.com/ardnew/chef/log"
	"github.com/ardnew/chef/run"
)

// ErrNoRecipeFile is reported when no recipe file exists in the working
// directory or any of its ancestors.
var ErrNoRecipeFile = lang.NewError("no recipe file found")

// recipeNames are the file names recognized during the upward search, in
// preference order within a directory.
var recipeNames = []string{"cheffile", "Cheffile"}

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given
// kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// recipePathKey stores the --file flag value in context.
type recipePathKey struct{}

// WithRecipePath returns a new context.Context carrying an explicit
// recipe file path. An empty path means search for one.
func WithRecipePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, recipePathKey{}, path)
}

func recipePathFrom(ctx context.Context) string {
	path, _ := ctx.Value(recipePathKey{}).(string)

	return path
}

// findRecipeFile searches dir and its ancestors for a recipe file.
func findRecipeFile(dir string) (string, error) {
	for {
		for _, name := range recipeNames {
			path := filepath.Join(dir, name)

			info, err := os.Stat(path)

			switch {
			case err == nil && info.Mode().IsRegular():
				return path, nil

			case err != nil && !errors.Is(err, fs.ErrNotExist):
				return "", lang.ErrLoad.Wrap(err)
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", lang.ErrLoad.Wrap(ErrNoRecipeFile)
		}

		dir = parent
	}
}

// load locates, reads, and parses the recipe file for the current
// invocation, including its imports.
func load(ctx context.Context) (*lang.File, error) {
	path := recipePathFrom(ctx)

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, lang.ErrLoad.Wrap(err)
		}

		path, err = findRecipeFile(wd)
		if err != nil {
			return nil, err
		}
	}

	return lang.Load(ctx, path, lang.WithLogger(log.Default()))
}

// groupRequests splits the positional tokens into per-recipe requests:
// each named recipe consumes following tokens as arguments until its
// minimum arity is met, then keeps consuming while it can accept more
// and the next token does not name another recipe.
func groupRequests(graph *run.Graph, tokens []string) ([]run.Request, error) {
	var reqs []run.Request

	for i := 0; i < len(tokens); {
		recipe, ok := graph.Lookup(tokens[i])
		if !ok {
			return nil, run.ErrResolve.Wrap(
				run.ErrUnknownRecipe.With(slog.String("recipe", tokens[i])),
			)
		}

		req := run.Request{Target: tokens[i]}
		i++

		for len(req.Args) < recipe.MinArity() && i < len(tokens) {
			req.Args = append(req.Args, tokens[i])
			i++
		}

		for i < len(tokens) {
			if max := recipe.MaxArity(); max >= 0 && len(req.Args) >= max {
				break
			}

			if _, ok := graph.Lookup(tokens[i]); ok {
				break
			}

			req.Args = append(req.Args, tokens[i])
			i++
		}

		reqs = append(reqs, req)
	}

	return reqs, nil
}
