package lang

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strings"
)

// Env is the binding environment for expression evaluation: recipe
// parameters currently in scope, file assignments (evaluated lazily and
// memoized), a dotenv mapping, and the process environment. It also
// carries the ambient context built-in functions draw from.
//
// An Env is constructed once per run from the file and configuration,
// then derived per recipe with [Env.WithParams]. The assignment cache is
// shared across derivations.
type Env struct {
	file          *File
	dotenv        map[string]string
	getenv        func(string) (string, bool)
	workingDir    string
	invocationDir string
	shell         []string

	params   map[string]string
	cache    map[string]string
	visiting *[]string
}

// EnvOption applies a configuration option to an Env.
type EnvOption func(*Env)

// WithDotenv supplies values loaded from a .env file. Dotenv values are
// visible to variable lookup and the env_var built-ins but never override
// the real process environment.
func WithDotenv(dotenv map[string]string) EnvOption {
	return func(e *Env) { e.dotenv = dotenv }
}

// WithGetenv replaces the process environment lookup, primarily for
// tests.
func WithGetenv(getenv func(string) (string, bool)) EnvOption {
	return func(e *Env) { e.getenv = getenv }
}

// WithWorkingDir sets the directory backtick commands run in.
func WithWorkingDir(dir string) EnvOption {
	return func(e *Env) { e.workingDir = dir }
}

// WithInvocationDir sets the directory reported by the
// invocation_directory built-in.
func WithInvocationDir(dir string) EnvOption {
	return func(e *Env) { e.invocationDir = dir }
}

// WithShell sets the shell argv used for backtick substitution.
func WithShell(argv []string) EnvOption {
	return func(e *Env) { e.shell = argv }
}

// NewEnv creates the evaluation environment for a parsed file.
func NewEnv(file *File, opts ...EnvOption) *Env {
	e := &Env{
		file:     file,
		getenv:   os.LookupEnv,
		shell:    file.Settings.ShellArgv(),
		cache:    make(map[string]string),
		visiting: new([]string),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// WithParams derives an environment with recipe parameters in scope.
// The assignment cache is shared with the parent.
func (e *Env) WithParams(params map[string]string) *Env {
	derived := *e
	derived.params = params

	return &derived
}

// EvaluateAll forces evaluation of every file assignment, memoizing the
// results. Variable-definition cycles and other assignment errors are
// reported here, before any recipe runs. The returned map is a copy.
func (e *Env) EvaluateAll(ctx context.Context) (map[string]string, error) {
	values := make(map[string]string, len(e.file.Assignments))

	for _, a := range e.file.Assignments {
		v, err := e.Value(ctx, a.Name)
		if err != nil {
			return nil, err
		}

		values[a.Name] = v
	}

	return values, nil
}

// Value resolves a name against the environment: parameters shadow
// assignments, which shadow dotenv values, which shadow the process
// environment. Unresolved names fail with an undefined variable error.
func (e *Env) Value(ctx context.Context, name string) (string, error) {
	if v, ok := e.params[name]; ok {
		return v, nil
	}

	if a, ok := e.file.Assignment(name); ok {
		return e.assignmentValue(ctx, a)
	}

	if v, ok := e.dotenv[name]; ok {
		return v, nil
	}

	if v, ok := e.getenv(name); ok {
		return v, nil
	}

	return "", ErrEval.Wrap(
		ErrUndefinedVariable.With(slog.String("name", name)),
	)
}

// assignmentValue evaluates an assignment with memoization and cycle
// detection. A name already on the visiting stack is a definition cycle,
// reported with the full path.
func (e *Env) assignmentValue(ctx context.Context, a *Assignment) (string, error) {
	if v, ok := e.cache[a.Name]; ok {
		return v, nil
	}

	if i := slices.Index(*e.visiting, a.Name); i >= 0 {
		cycle := append(slices.Clone((*e.visiting)[i:]), a.Name)

		return "", ErrEval.Wrap(
			ErrVariableCycle.At(a.Pos).
				With(slog.String("cycle", strings.Join(cycle, " -> "))),
		)
	}

	*e.visiting = append(*e.visiting, a.Name)
	defer func() { *e.visiting = (*e.visiting)[:len(*e.visiting)-1] }()

	v, err := e.Eval(ctx, a.Value)
	if err != nil {
		return "", err
	}

	e.cache[a.Name] = v

	return v, nil
}

// Eval reduces an expression to a string value. Evaluation is strictly
// left to right; a conditional evaluates both comparison operands but
// only the selected branch.
func (e *Env) Eval(ctx context.Context, x *Expr) (string, error) {
	switch x.Kind {
	case ExprString:
		return x.Str, nil

	case ExprVariable:
		v, err := e.Value(ctx, x.Name)
		if err != nil {
			return "", positioned(err, x.Pos)
		}

		return v, nil

	case ExprConcat:
		lhs, err := e.Eval(ctx, x.Lhs)
		if err != nil {
			return "", err
		}

		rhs, err := e.Eval(ctx, x.Rhs)
		if err != nil {
			return "", err
		}

		return lhs + rhs, nil

	case ExprCall:
		return e.call(ctx, x)

	case ExprIf:
		return e.conditional(ctx, x)

	case ExprBacktick:
		return e.backtick(ctx, x)

	case ExprGroup:
		return e.Eval(ctx, x.Inner)

	default:
		return "", ErrEval.With(slog.String("kind", x.Kind.String()))
	}
}

func (e *Env) conditional(ctx context.Context, x *Expr) (string, error) {
	lhs, err := e.Eval(ctx, x.Lhs)
	if err != nil {
		return "", err
	}

	rhs, err := e.Eval(ctx, x.Rhs)
	if err != nil {
		return "", err
	}

	var truth bool

	switch x.Operator {
	case OpEquals:
		truth = lhs == rhs
	case OpNotEquals:
		truth = lhs != rhs
	case OpMatches:
		re, err := regexp.Compile(rhs)
		if err != nil {
			return "", ErrEval.Wrap(
				ErrBadRegex.At(x.Rhs.Pos).Wrap(err),
			)
		}

		truth = re.MatchString(lhs)
	}

	if truth {
		return e.Eval(ctx, x.Then)
	}

	return e.Eval(ctx, x.Else)
}

// backtick runs the command through the configured shell and captures
// its standard output with trailing newlines removed.
func (e *Env) backtick(ctx context.Context, x *Expr) (string, error) {
	argv := append(slices.Clone(e.shell), x.Str)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = e.workingDir
	cmd.Env = appendEnv(os.Environ(), e.dotenv)

	out, err := cmd.Output()
	if err != nil {
		return "", ErrEval.Wrap(
			ErrBacktickFailed.At(x.Pos).
				With(slog.String("command", x.Str)).
				Wrap(err),
		)
	}

	return strings.TrimRight(string(out), "\r\n"), nil
}

// appendEnv appends the mapping as KEY=VALUE pairs to a copy of environ,
// skipping keys already present.
func appendEnv(environ []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return environ
	}

	out := slices.Clone(environ)

	for k, v := range extra {
		if hasEnvKey(environ, k) {
			continue
		}

		out = append(out, k+"="+v)
	}

	return out
}

func hasEnvKey(environ []string, key string) bool {
	for _, kv := range environ {
		if len(kv) > len(key) && kv[len(key)] == '=' && kv[:len(key)] == key {
			return true
		}
	}

	return false
}

// positioned attaches a source position to err when it is an *Error
// without one.
func positioned(err error, pos Position) error {
	e := &Error{}
	if errors.As(err, &e) {
		return e.At(pos)
	}

	return err
}
