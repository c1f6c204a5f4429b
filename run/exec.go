package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/ardnew/chef/lang"
)

// lineMode captures the prefix characters stripped from the start of a
// rendered body line.
type lineMode struct {
	// quiet suppresses echoing this line ("@" prefix).
	quiet bool
	// tolerate continues past a non-zero exit ("-" prefix).
	tolerate bool
}

// Execute runs every invocation in the plan, in order, stopping at the
// first non-suppressed failure. Platform-restricted recipes that do not
// match the host are skipped, not failed.
func (r *Runner) Execute(ctx context.Context, plan *Plan) error {
	for _, inv := range plan.Invocations {
		if err := ctx.Err(); err != nil {
			return ErrRuntime.Wrap(ErrInterrupted.Wrap(err))
		}

		recipe := inv.Recipe

		if !recipe.Attributes.EnabledOnHost() {
			r.cfg.Logger.Debug("recipe skipped on this platform",
				slog.String("recipe", recipe.Name),
			)

			continue
		}

		if recipe.Attributes.Has(lang.AttrConfirm) && !r.cfg.Yes && !r.cfg.DryRun {
			ok, err := r.confirm(recipe.Name)
			if err != nil {
				return err
			}

			if !ok {
				return ErrRuntime.Wrap(
					ErrNotConfirmed.With(slog.String("recipe", recipe.Name)),
				)
			}
		}

		if err := r.runRecipe(ctx, inv); err != nil {
			return err
		}
	}

	return nil
}

// confirm prompts on stderr and reads one line from stdin. Only an
// answer beginning with "y" or "Y" confirms.
func (r *Runner) confirm(name string) (bool, error) {
	fmt.Fprintf(r.cfg.Stderr, "Run recipe %q? ", name)

	answer, err := bufio.NewReader(r.cfg.Stdin).ReadString('\n')
	if err != nil && answer == "" {
		return false, ErrRuntime.Wrap(err)
	}

	answer = strings.TrimSpace(answer)

	return answer == "y" || answer == "Y" ||
		strings.EqualFold(answer, "yes"), nil
}

// runRecipe renders and executes one invocation, either as a temporary
// shebang script or line by line through the shell. Rendering keeps
// every line verbatim: a shebang body must reach the script file
// untouched, so "@"/"-" prefixes are stripped only on the linewise
// path.
func (r *Runner) runRecipe(ctx context.Context, inv Invocation) error {
	env := r.env.WithParams(inv.scope())

	raw := make([]string, 0, len(inv.Recipe.Body))

	for _, line := range inv.Recipe.Body {
		text, err := r.renderLine(ctx, env, line)
		if err != nil {
			return err
		}

		raw = append(raw, text)
	}

	if len(raw) > 0 {
		if shebang, ok := ParseShebang(raw[0]); ok {
			return r.runScript(ctx, inv, shebang, raw)
		}
	}

	lines := make([]string, len(raw))
	modes := make([]lineMode, len(raw))

	for i, text := range raw {
		lines[i], modes[i] = stripPrefixes(text, literalPrefixLen(inv.Recipe.Body[i]))
	}

	return r.runLines(ctx, inv, lines, modes)
}

// renderLine evaluates a body line's interpolations and concatenates
// the result, leaving any prefix characters in place.
func (r *Runner) renderLine(
	ctx context.Context,
	env *lang.Env,
	line lang.Line,
) (string, error) {
	var sb strings.Builder

	for _, frag := range line.Fragments {
		if frag.Interp == nil {
			sb.WriteString(frag.Text)

			continue
		}

		v, err := env.Eval(ctx, frag.Interp)
		if err != nil {
			return "", err
		}

		sb.WriteString(v)
	}

	return sb.String(), nil
}

// literalPrefixLen returns how many leading bytes of the rendered line
// came from literal source text. Prefix characters are recognized only
// there, never in an interpolated value.
func literalPrefixLen(line lang.Line) int {
	if len(line.Fragments) == 0 || line.Fragments[0].Interp != nil {
		return 0
	}

	return len(line.Fragments[0].Text)
}

// stripPrefixes removes leading "@" and "-" characters within the first
// limit bytes, in any order, recording what they enable.
func stripPrefixes(text string, limit int) (string, lineMode) {
	var mode lineMode

	n := 0

	for n < limit && n < len(text) {
		switch text[n] {
		case '@':
			mode.quiet = true
		case '-':
			mode.tolerate = true
		default:
			return text[n:], mode
		}

		n++
	}

	return text[n:], mode
}

// runLines executes each rendered line as its own shell child. A blank
// line runs nothing. Lines echo to stderr before running unless
// suppressed by configuration, the quiet attribute, or an "@" prefix.
func (r *Runner) runLines(
	ctx context.Context,
	inv Invocation,
	lines []string,
	modes []lineMode,
) error {
	quiet := r.cfg.Quiet || inv.Recipe.Attributes.Has(lang.AttrQuiet)

	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return ErrRuntime.Wrap(ErrInterrupted.Wrap(err))
		}

		if strings.TrimSpace(line) == "" {
			continue
		}

		if !quiet && !modes[i].quiet {
			fmt.Fprintln(r.cfg.Stderr, line)
		}

		if r.cfg.DryRun {
			if quiet || modes[i].quiet {
				fmt.Fprintln(r.cfg.Stderr, line)
			}

			continue
		}

		argv := slices.Clone(r.cfg.Shell)
		argv = append(argv, line)

		if r.file.Settings.PositionalArguments {
			argv = append(argv, inv.Recipe.Name)
			argv = append(argv, inv.Args...)
		}

		err := r.spawn(ctx, inv, argv)

		switch {
		case err == nil:

		case modes[i].tolerate && errors.Is(err, ErrRecipeFailed):
			r.cfg.Logger.Debug("line failure suppressed",
				slog.String("recipe", inv.Recipe.Name),
				slog.Int("line", inv.Recipe.Body[i].Pos.Line),
			)

		default:
			return r.exitMessage(err, inv, inv.Recipe.Body[i].Pos.Line)
		}
	}

	return nil
}

// runScript writes the rendered body to a temporary script and runs it
// through the shebang interpreter as a single child process. Line
// prefixes have no meaning inside a script body.
func (r *Runner) runScript(
	ctx context.Context,
	inv Invocation,
	shebang Shebang,
	lines []string,
) error {
	if !shebang.IncludeShebangLine() {
		lines = lines[1:]
	}

	script := strings.Join(lines, "\n") + "\n"

	if r.cfg.DryRun {
		fmt.Fprint(r.cfg.Stderr, script)

		return nil
	}

	f, err := os.CreateTemp("", "chef-"+inv.Recipe.Name+"-*"+shebang.ScriptSuffix())
	if err != nil {
		return ErrRuntime.Wrap(ErrSpawnFailed.Wrap(err))
	}

	path := f.Name()
	defer os.Remove(path)

	_, err = f.WriteString(script)
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err == nil {
		err = os.Chmod(path, 0o700)
	}

	if err != nil {
		return ErrRuntime.Wrap(
			ErrSpawnFailed.Wrap(err).With(slog.String("script", path)),
		)
	}

	argv := shebang.Argv(path)

	if r.file.Settings.PositionalArguments {
		argv = append(argv, inv.Args...)
	}

	if err := r.spawn(ctx, inv, argv); err != nil {
		return r.exitMessage(err, inv, inv.Recipe.Pos.Line)
	}

	return nil
}

// spawn runs one child process wired to the configured streams. A
// non-zero exit maps to ErrRecipeFailed with the child's exit code; any
// other failure maps to ErrSpawnFailed.
func (r *Runner) spawn(ctx context.Context, inv Invocation, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.workdir(inv.Recipe)
	cmd.Env = r.childEnv(inv)
	cmd.Stdin = r.cfg.Stdin
	cmd.Stdout = r.cfg.Stdout
	cmd.Stderr = r.cfg.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return ErrRuntime.Wrap(ErrInterrupted.Wrap(ctx.Err()))
	}

	exit := new(exec.ExitError)
	if errors.As(err, &exit) {
		return ErrRuntime.Wrap(
			ErrRecipeFailed.
				With(
					slog.String("recipe", inv.Recipe.Name),
					slog.Int("code", exit.ExitCode()),
				).
				Wrap(err),
		)
	}

	return ErrRuntime.Wrap(
		ErrSpawnFailed.Wrap(err).With(slog.String("command", argv[0])),
	)
}

// workdir returns the directory the recipe's children run in.
func (r *Runner) workdir(recipe *lang.Recipe) string {
	if recipe.Attributes.Has(lang.AttrNoCD) {
		return r.cfg.InvocationDir
	}

	return r.cfg.WorkingDir
}

// childEnv assembles a child process environment: the process
// environment, dotenv values that do not shadow it, exported
// assignments, and, when the export setting is on, the invocation's
// parameters.
func (r *Runner) childEnv(inv Invocation) []string {
	env := os.Environ()

	for k, v := range r.dotenv {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}

		env = append(env, k+"="+v)
	}

	for _, a := range r.file.Assignments {
		if a.Export || r.file.Settings.ExportAll {
			env = append(env, a.Name+"="+r.values[a.Name])
		}
	}

	if r.file.Settings.ExportAll {
		for i, p := range inv.Recipe.Parameters {
			env = append(env, p.Name+"="+inv.Args[i])
		}
	}

	return env
}

// exitMessage logs the failure unless the recipe opts out, then returns
// the error unchanged. Interruption is never silenced.
func (r *Runner) exitMessage(err error, inv Invocation, line int) error {
	if inv.Recipe.Attributes.Has(lang.AttrNoExitMessage) &&
		!errors.Is(err, ErrInterrupted) {
		return err
	}

	r.cfg.Logger.Error("recipe failed",
		slog.String("recipe", inv.Recipe.Name),
		slog.Int("line", line),
		slog.Any("error", err),
	)

	return err
}
