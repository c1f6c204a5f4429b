package lang

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Load parses the recipe file at path and resolves its import
// declarations recursively, merging every imported file's assignments,
// recipes, and aliases into a single namespace. Import cycles and
// duplicate names across files are errors.
//
// Settings are taken from the root file only; an imported file's settings
// do not leak into the importing namespace.
func Load(ctx context.Context, path string, opts ...Option) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ErrLoad.Wrap(WrapError(err))
	}

	loader := &loader{visiting: []string{}}

	file, err := loader.load(ctx, abs, opts...)
	if err != nil {
		return nil, err
	}

	if err := checkDuplicates(file); err != nil {
		return nil, err
	}

	file.buildIndex()

	return file, nil
}

type loader struct {
	visiting []string // absolute paths on the current import chain
}

func (l *loader) load(ctx context.Context, abs string, opts ...Option) (*File, error) {
	for _, p := range l.visiting {
		if p == abs {
			chain := append(append([]string{}, l.visiting...), abs)

			return nil, ErrLoad.Wrap(
				ErrImportCycle.With(
					slog.String("cycle", strings.Join(chain, " -> ")),
				),
			)
		}
	}

	l.visiting = append(l.visiting, abs)
	defer func() { l.visiting = l.visiting[:len(l.visiting)-1] }()

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, ErrLoad.Wrap(ErrReadInput.Wrap(err))
	}

	file, err := Parse(ctx, string(data), opts...)
	if err != nil {
		return nil, err
	}

	file.Path = abs

	for _, imp := range file.Imports {
		target := imp.Path
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(abs), target)
		}

		imported, err := l.load(ctx, filepath.Clean(target), opts...)
		if err != nil {
			return nil, positioned(err, imp.Pos)
		}

		file.Assignments = append(file.Assignments, imported.Assignments...)
		file.Recipes = append(file.Recipes, imported.Recipes...)
		file.Aliases = append(file.Aliases, imported.Aliases...)
	}

	return file, nil
}

// checkDuplicates reports name collisions introduced by import merging.
// Collisions within a single file are already caught by the parser.
func checkDuplicates(file *File) error {
	var dups []error

	seen := map[string]Position{}

	for _, r := range file.Recipes {
		if pos, ok := seen["recipe\x00"+r.Name]; ok {
			dups = append(dups, ErrDuplicateName.At(r.Pos).
				With(
					slog.String("kind", "recipe"),
					slog.String("name", r.Name),
					slog.String("first", pos.String()),
				))

			continue
		}

		seen["recipe\x00"+r.Name] = r.Pos
	}

	for _, a := range file.Assignments {
		if pos, ok := seen["assignment\x00"+a.Name]; ok {
			dups = append(dups, ErrDuplicateName.At(a.Pos).
				With(
					slog.String("kind", "assignment"),
					slog.String("name", a.Name),
					slog.String("first", pos.String()),
				))

			continue
		}

		seen["assignment\x00"+a.Name] = a.Pos
	}

	for _, a := range file.Aliases {
		if pos, ok := seen["alias\x00"+a.Name]; ok {
			dups = append(dups, ErrDuplicateName.At(a.Pos).
				With(
					slog.String("kind", "alias"),
					slog.String("name", a.Name),
					slog.String("first", pos.String()),
				))

			continue
		}

		seen["alias\x00"+a.Name] = a.Pos
	}

	if len(dups) > 0 {
		return ErrLoad.Wrap(errors.Join(dups...))
	}

	return nil
}
