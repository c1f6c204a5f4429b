package lang

import (
	"context"
	"log/slog"
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrEnvVarNotPresent reports an env_var lookup of an unset variable.
var ErrEnvVarNotPresent = NewError("environment variable not present")

// ErrNoExtension reports a path built-in applied to a path without the
// required component.
var ErrNoExtension = NewError("path has no extension")

// function is one entry of the closed built-in function table.
type function struct {
	arity int
	fn    func(e *Env, args []string) (string, error)
}

// functions is the closed set of built-ins available in expressions.
// All are pure over ambient context; none mutate state.
var functions = map[string]function{
	"arch": {0, func(*Env, []string) (string, error) {
		return runtime.GOARCH, nil
	}},
	"os": {0, func(*Env, []string) (string, error) {
		return runtime.GOOS, nil
	}},
	"os_family": {0, func(*Env, []string) (string, error) {
		if runtime.GOOS == "windows" {
			return "windows", nil
		}

		return "unix", nil
	}},
	"env_var": {1, func(e *Env, args []string) (string, error) {
		if v, ok := e.dotenv[args[0]]; ok {
			return v, nil
		}

		if v, ok := e.getenv(args[0]); ok {
			return v, nil
		}

		return "", ErrEnvVarNotPresent.With(slog.String("name", args[0]))
	}},
	"env_var_or_default": {2, func(e *Env, args []string) (string, error) {
		if v, ok := e.dotenv[args[0]]; ok {
			return v, nil
		}

		if v, ok := e.getenv(args[0]); ok {
			return v, nil
		}

		return args[1], nil
	}},
	"invocation_directory": {0, func(e *Env, _ []string) (string, error) {
		return e.invocationDir, nil
	}},
	"source_file": {0, func(e *Env, _ []string) (string, error) {
		return e.file.Path, nil
	}},
	"source_directory": {0, func(e *Env, _ []string) (string, error) {
		return filepath.Dir(e.file.Path), nil
	}},
	"uppercase": {1, func(_ *Env, args []string) (string, error) {
		return strings.ToUpper(args[0]), nil
	}},
	"lowercase": {1, func(_ *Env, args []string) (string, error) {
		return strings.ToLower(args[0]), nil
	}},
	"trim": {1, func(_ *Env, args []string) (string, error) {
		return strings.TrimSpace(args[0]), nil
	}},
	"replace": {3, func(_ *Env, args []string) (string, error) {
		return strings.ReplaceAll(args[0], args[1], args[2]), nil
	}},
	"extension": {1, func(_ *Env, args []string) (string, error) {
		ext := filepath.Ext(args[0])
		if ext == "" {
			return "", ErrNoExtension.With(slog.String("path", args[0]))
		}

		return strings.TrimPrefix(ext, "."), nil
	}},
	"file_name": {1, func(_ *Env, args []string) (string, error) {
		return filepath.Base(args[0]), nil
	}},
	"file_stem": {1, func(_ *Env, args []string) (string, error) {
		base := filepath.Base(args[0])

		return strings.TrimSuffix(base, filepath.Ext(base)), nil
	}},
	"parent_directory": {1, func(_ *Env, args []string) (string, error) {
		return filepath.Dir(args[0]), nil
	}},
	"without_extension": {1, func(_ *Env, args []string) (string, error) {
		return strings.TrimSuffix(args[0], filepath.Ext(args[0])), nil
	}},
	"join": {2, func(_ *Env, args []string) (string, error) {
		return filepath.Join(args[0], args[1]), nil
	}},
	"clean": {1, func(_ *Env, args []string) (string, error) {
		return filepath.Clean(args[0]), nil
	}},
	"uuid": {0, func(*Env, []string) (string, error) {
		return uuid.NewString(), nil
	}},
	"datetime": {1, func(_ *Env, args []string) (string, error) {
		return time.Now().Format(args[0]), nil
	}},
}

// Functions returns the sorted names of all built-in functions, for
// completion and introspection.
func Functions() []string {
	return slices.Sorted(maps.Keys(functions))
}

// call evaluates a function call expression: arguments first, strictly
// left to right, then the built-in itself.
func (e *Env) call(ctx context.Context, x *Expr) (string, error) {
	fn, ok := functions[x.Name]
	if !ok {
		return "", ErrEval.Wrap(
			ErrUnknownFunction.At(x.Pos).
				With(slog.String("name", x.Name)),
		)
	}

	if len(x.Args) != fn.arity {
		return "", ErrEval.Wrap(
			ErrFunctionArity.At(x.Pos).
				With(
					slog.String("function", x.Name),
					slog.Int("expected", fn.arity),
					slog.Int("got", len(x.Args)),
				),
		)
	}

	args := make([]string, len(x.Args))

	for i, arg := range x.Args {
		v, err := e.Eval(ctx, arg)
		if err != nil {
			return "", err
		}

		args[i] = v
	}

	out, err := fn.fn(e, args)
	if err != nil {
		return "", ErrEval.Wrap(positioned(err, x.Pos))
	}

	return out, nil
}
