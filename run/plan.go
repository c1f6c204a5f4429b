package run

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/chef/lang"
)

// Request is one user-requested target: a recipe (or alias) name plus
// its positional argument strings.
type Request struct {
	Target string
	Args   []string
}

// Invocation is one planned recipe execution with fully bound parameter
// values in declaration order.
type Invocation struct {
	Recipe *lang.Recipe
	// Args holds one evaluated value per parameter; a variadic
	// parameter's absorbed arguments are joined by single spaces.
	Args []string
}

// key is the deduplication identity of the invocation: an invocation is
// scheduled at most once per distinct (recipe, argument list) pair, and
// only argument lists that are lexically identical after evaluation
// collapse.
func (v Invocation) key() string {
	return v.Recipe.Name + "\x00" + strings.Join(v.Args, "\x00")
}

// scope returns the parameter binding map for evaluation.
func (v Invocation) scope() map[string]string {
	scope := make(map[string]string, len(v.Recipe.Parameters))

	for i, p := range v.Recipe.Parameters {
		scope[p.Name] = v.Args[i]
	}

	return scope
}

// Plan is a deduplicated, dependency-ordered sequence of invocations.
// Every dependency of an invocation appears at a strictly earlier index.
type Plan struct {
	Invocations []Invocation
}

// Plan validates the requested targets and produces the complete
// execution plan, or fails without side effects: argument arity is
// checked, dependency arguments are evaluated in the dependent's
// parameter scope, and dependencies are ordered before dependents while
// preserving their declaration order.
func (r *Runner) Plan(ctx context.Context, reqs ...Request) (*Plan, error) {
	if len(reqs) == 0 {
		def, ok := r.file.DefaultRecipe()
		if !ok {
			return nil, ErrResolve.Wrap(ErrNoRecipes)
		}

		reqs = []Request{{Target: def.Name}}
	}

	plan := new(Plan)
	seen := make(map[string]bool)

	for _, req := range reqs {
		recipe, ok := r.graph.Lookup(req.Target)
		if !ok {
			return nil, ErrResolve.Wrap(
				ErrUnknownRecipe.With(slog.String("recipe", req.Target)),
			)
		}

		inv, err := r.bind(ctx, recipe, req.Args)
		if err != nil {
			return nil, err
		}

		if err := r.schedule(ctx, inv, seen, plan); err != nil {
			return nil, err
		}
	}

	r.cfg.Logger.Debug("plan complete",
		slog.Int("invocations", len(plan.Invocations)),
	)

	return plan, nil
}

// bind checks arity and produces the invocation's bound argument values:
// supplied arguments positionally, defaults evaluated at file scope for
// the rest, and all trailing arguments joined for a variadic parameter.
func (r *Runner) bind(
	ctx context.Context,
	recipe *lang.Recipe,
	args []string,
) (Invocation, error) {
	attrs := []slog.Attr{
		slog.String("recipe", recipe.Name),
		slog.Int("got", len(args)),
	}

	if len(args) < recipe.MinArity() {
		return Invocation{}, ErrResolve.Wrap(
			ErrTooFewArguments.At(recipe.Pos).
				With(append(attrs, slog.Int("required", recipe.MinArity()))...),
		)
	}

	if max := recipe.MaxArity(); max >= 0 && len(args) > max {
		return Invocation{}, ErrResolve.Wrap(
			ErrTooManyArgs.At(recipe.Pos).
				With(append(attrs, slog.Int("accepted", max))...),
		)
	}

	bound := make([]string, len(recipe.Parameters))

	for i, param := range recipe.Parameters {
		switch {
		case param.Variadic && i < len(args):
			bound[i] = strings.Join(args[i:], " ")

		case i < len(args):
			bound[i] = args[i]

		case param.Default != nil:
			v, err := r.env.Eval(ctx, param.Default)
			if err != nil {
				return Invocation{}, err
			}

			bound[i] = v

		default:
			// only a "*" variadic given no arguments reaches here
			bound[i] = ""
		}
	}

	return Invocation{Recipe: recipe, Args: bound}, nil
}

// schedule appends the invocation to the plan after all of its
// dependencies, in declaration order, have been scheduled. An
// invocation already present with an identical argument binding is not
// scheduled twice; the same recipe with different arguments is
// scheduled once per distinct binding.
func (r *Runner) schedule(
	ctx context.Context,
	inv Invocation,
	seen map[string]bool,
	plan *Plan,
) error {
	if seen[inv.key()] {
		return nil
	}

	seen[inv.key()] = true

	env := r.env.WithParams(inv.scope())

	for _, dep := range inv.Recipe.Dependencies {
		target, _ := r.graph.Lookup(dep.Target)

		args := make([]string, len(dep.Arguments))

		for i, arg := range dep.Arguments {
			v, err := env.Eval(ctx, arg)
			if err != nil {
				return err
			}

			args[i] = v
		}

		depInv, err := r.bind(ctx, target, args)
		if err != nil {
			return err
		}

		if err := r.schedule(ctx, depInv, seen, plan); err != nil {
			return err
		}
	}

	plan.Invocations = append(plan.Invocations, inv)

	return nil
}
