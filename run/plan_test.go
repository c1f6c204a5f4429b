package run

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/chef/log"
)

// newRunner builds a runner for the parsed source with quiet defaults
// suitable for tests.
func newRunner(t *testing.T, src string, cfg Config) *Runner {
	t.Helper()

	if cfg.WorkingDir == "" {
		cfg.WorkingDir = t.TempDir()
	}

	cfg.Logger = log.Logger{}

	if cfg.Stdin == nil {
		cfg.Stdin = strings.NewReader("")
	}

	if cfg.Stdout == nil {
		cfg.Stdout = &strings.Builder{}
	}

	if cfg.Stderr == nil {
		cfg.Stderr = &strings.Builder{}
	}

	runner, err := New(context.Background(), parseFile(t, src), cfg)
	if err != nil {
		t.Fatalf("runner error: %v", err)
	}

	return runner
}

// planNames renders the plan as "name arg arg" strings.
func planNames(plan *Plan) []string {
	out := make([]string, len(plan.Invocations))

	for i, inv := range plan.Invocations {
		parts := append([]string{inv.Recipe.Name}, inv.Args...)
		out[i] = strings.TrimSpace(strings.Join(parts, " "))
	}

	return out
}

func TestPlan_SharedDependencyRunsOnce(t *testing.T) {
	r := newRunner(t, strings.Join([]string{
		"build: deps",
		"  true",
		"test: deps",
		"  true",
		"deps:",
		"  true",
		"",
	}, "\n"), Config{})

	plan, err := r.Plan(context.Background(),
		Request{Target: "build"}, Request{Target: "test"})
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}

	want := []string{"deps", "build", "test"}

	if diff := cmp.Diff(want, planNames(plan)); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_DependenciesPrecedeDependents(t *testing.T) {
	r := newRunner(t, strings.Join([]string{
		"all: build package",
		"build: generate",
		"  true",
		"package: build",
		"  true",
		"generate:",
		"  true",
		"",
	}, "\n"), Config{})

	plan, err := r.Plan(context.Background(), Request{Target: "all"})
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}

	want := []string{"generate", "build", "package", "all"}

	if diff := cmp.Diff(want, planNames(plan)); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_DefaultRecipe(t *testing.T) {
	r := newRunner(t, "first:\n  true\nsecond:\n  true\n", Config{})

	plan, err := r.Plan(context.Background())
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}

	if diff := cmp.Diff([]string{"first"}, planNames(plan)); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_ArgumentBinding(t *testing.T) {
	tests := []struct {
		name string
		src  string
		req  Request
		want []string
	}{
		{
			name: "defaults fill missing arguments",
			src:  "build target flags='-v':\n  true\n",
			req:  Request{Target: "build", Args: []string{"app"}},
			want: []string{"build app -v"},
		},
		{
			name: "explicit argument overrides default",
			src:  "build target flags='-v':\n  true\n",
			req:  Request{Target: "build", Args: []string{"app", "-q"}},
			want: []string{"build app -q"},
		},
		{
			name: "variadic joins remaining arguments",
			src:  "fmt *files:\n  true\n",
			req:  Request{Target: "fmt", Args: []string{"a.go", "b.go", "c.go"}},
			want: []string{"fmt a.go b.go c.go"},
		},
		{
			name: "star variadic accepts none",
			src:  "fmt *files:\n  true\n",
			req:  Request{Target: "fmt"},
			want: []string{"fmt"},
		},
		{
			name: "alias request",
			src:  "alias b := build\nbuild:\n  true\n",
			req:  Request{Target: "b"},
			want: []string{"build"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner(t, tt.src, Config{})

			plan, err := r.Plan(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("plan error: %v", err)
			}

			if diff := cmp.Diff(tt.want, planNames(plan)); diff != "" {
				t.Errorf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlan_DependencyArgumentsEvaluateInDependentScope(t *testing.T) {
	r := newRunner(t, strings.Join([]string{
		"build target: (compile target)",
		"  true",
		"compile mode:",
		"  true",
		"",
	}, "\n"), Config{})

	plan, err := r.Plan(context.Background(),
		Request{Target: "build", Args: []string{"release"}})
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}

	want := []string{"compile release", "build release"}

	if diff := cmp.Diff(want, planNames(plan)); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_DistinctArgumentsScheduleSeparately(t *testing.T) {
	r := newRunner(t, strings.Join([]string{
		"all: (compile 'debug') (compile 'release') (compile 'debug')",
		"compile mode:",
		"  true",
		"",
	}, "\n"), Config{})

	plan, err := r.Plan(context.Background(), Request{Target: "all"})
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}

	// Identical evaluated argument lists collapse; distinct ones do not.
	want := []string{"compile debug", "compile release", "all"}

	if diff := cmp.Diff(want, planNames(plan)); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlan_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		req  Request
		want error
	}{
		{
			name: "unknown target",
			src:  "build:\n  true\n",
			req:  Request{Target: "missing"},
			want: ErrUnknownRecipe,
		},
		{
			name: "too few arguments",
			src:  "build target:\n  true\n",
			req:  Request{Target: "build"},
			want: ErrTooFewArguments,
		},
		{
			name: "too many arguments",
			src:  "build target:\n  true\n",
			req:  Request{Target: "build", Args: []string{"a", "b"}},
			want: ErrTooManyArgs,
		},
		{
			name: "plus variadic requires one",
			src:  "fmt +files:\n  true\n",
			req:  Request{Target: "fmt"},
			want: ErrTooFewArguments,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner(t, tt.src, Config{})

			_, err := r.Plan(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error, got none")
			}

			if !errors.Is(err, ErrResolve) {
				t.Errorf("error %v does not wrap ErrResolve", err)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("error %v does not wrap %v", err, tt.want)
			}
		})
	}
}

func TestPlan_NoRecipes(t *testing.T) {
	r := newRunner(t, "x := \"1\"\n", Config{})

	_, err := r.Plan(context.Background())
	if !errors.Is(err, ErrNoRecipes) {
		t.Fatalf("error %v does not wrap ErrNoRecipes", err)
	}
}

func TestPlan_TopologicalSoundness(t *testing.T) {
	r := newRunner(t, strings.Join([]string{
		"a: b c",
		"b: d",
		"c: d",
		"d:",
		"  true",
		"",
	}, "\n"), Config{})

	plan, err := r.Plan(context.Background(), Request{Target: "a"})
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}

	index := make(map[string]int)
	for i, inv := range plan.Invocations {
		index[inv.Recipe.Name] = i
	}

	edges := map[string][]string{"a": {"b", "c"}, "b": {"d"}, "c": {"d"}}

	for from, tos := range edges {
		for _, to := range tos {
			if index[to] >= index[from] {
				t.Errorf("%s scheduled at %d, after dependent %s at %d",
					to, index[to], from, index[from])
			}
		}
	}

	if len(plan.Invocations) != 4 {
		t.Errorf("invocation count: got %d, want 4", len(plan.Invocations))
	}
}
