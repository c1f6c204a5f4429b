package lang

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// exprCmp compares expression trees ignoring source positions.
var exprCmp = cmp.Options{
	cmpopts.IgnoreFields(Expr{}, "Pos"),
}

func parseString(t *testing.T, src string) *File {
	t.Helper()

	file, err := Parse(context.Background(), src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	return file
}

func TestParse_Counts(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		recipes     int
		assignments int
		aliases     int
	}{
		{
			name:    "single recipe",
			input:   "build:\n  echo hi\n",
			recipes: 1,
		},
		{
			name:    "dependency only recipe",
			input:   "all: build test\nbuild:\n  true\ntest:\n  true\n",
			recipes: 3,
		},
		{
			name:        "assignments and aliases",
			input:       "version := \"1.0\"\nname := \"chef\"\nalias b := build\nbuild:\n  true\n",
			recipes:     1,
			assignments: 2,
			aliases:     1,
		},
		{
			name:    "empty file",
			input:   "",
			recipes: 0,
		},
		{
			name:    "comments only",
			input:   "# nothing here\n\n# still nothing\n",
			recipes: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := parseString(t, tt.input)

			if len(file.Recipes) != tt.recipes {
				t.Errorf("recipes: got %d, want %d", len(file.Recipes), tt.recipes)
			}

			if len(file.Assignments) != tt.assignments {
				t.Errorf("assignments: got %d, want %d",
					len(file.Assignments), tt.assignments)
			}

			if len(file.Aliases) != tt.aliases {
				t.Errorf("aliases: got %d, want %d", len(file.Aliases), tt.aliases)
			}
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	src := `
version := "1.0"

# Build the project.
build target flags='-v': (prepare target)
  echo building {{ target }} {{ flags }}

prepare target:
  echo preparing {{ target }}
`

	a := parseString(t, src)
	b := parseString(t, src)

	if diff := cmp.Diff(a, b,
		cmpopts.IgnoreUnexported(File{}),
	); diff != "" {
		t.Errorf("repeated parses differ (-first +second):\n%s", diff)
	}
}

func TestParse_RecipeHeader(t *testing.T) {
	file := parseString(t,
		"# Compile the target.\nbuild target flags='-v' *rest: deps (lint target)\n  true\n")

	recipe, ok := file.Recipe("build")
	if !ok {
		t.Fatal("recipe build not found")
	}

	if recipe.Doc != "Compile the target." {
		t.Errorf("doc: got %q", recipe.Doc)
	}

	params := recipe.Parameters
	if len(params) != 3 {
		t.Fatalf("parameters: got %d, want 3", len(params))
	}

	if params[0].Name != "target" || params[0].Default != nil || params[0].Variadic {
		t.Errorf("param 0: got %+v", params[0])
	}

	if params[1].Name != "flags" || params[1].Default == nil {
		t.Errorf("param 1: got %+v", params[1])
	}

	if !params[2].Variadic || params[2].Plus {
		t.Errorf("param 2: got %+v", params[2])
	}

	if got := recipe.MinArity(); got != 1 {
		t.Errorf("min arity: got %d, want 1", got)
	}

	if got := recipe.MaxArity(); got != -1 {
		t.Errorf("max arity: got %d, want -1", got)
	}

	deps := recipe.Dependencies
	if len(deps) != 2 {
		t.Fatalf("dependencies: got %d, want 2", len(deps))
	}

	if deps[0].Target != "deps" || len(deps[0].Arguments) != 0 {
		t.Errorf("dep 0: got %+v", deps[0])
	}

	if deps[1].Target != "lint" || len(deps[1].Arguments) != 1 {
		t.Errorf("dep 1: got %+v", deps[1])
	}
}

func TestParse_PlusVariadic(t *testing.T) {
	file := parseString(t, "fmt +files:\n  true\n")

	recipe, _ := file.Recipe("fmt")

	if got := recipe.MinArity(); got != 1 {
		t.Errorf("min arity: got %d, want 1", got)
	}

	if got := recipe.MaxArity(); got != -1 {
		t.Errorf("max arity: got %d, want -1", got)
	}
}

func TestParse_Settings(t *testing.T) {
	file := parseString(t, strings.Join([]string{
		`set shell := ["bash", "-uc"]`,
		`set dotenv-load`,
		`set export := true`,
		`set positional-arguments := false`,
		``,
	}, "\n"))

	s := file.Settings

	if got := s.ShellArgv(); len(got) != 2 || got[0] != "bash" || got[1] != "-uc" {
		t.Errorf("shell: got %v", got)
	}

	if !s.DotenvLoad || !s.ExportAll || s.PositionalArguments {
		t.Errorf("toggles: got %+v", s)
	}
}

func TestParse_Attributes(t *testing.T) {
	file := parseString(t,
		"[no-cd, confirm]\n[quiet]\ndeploy:\n  true\n")

	recipe, _ := file.Recipe("deploy")

	for _, attr := range []Attribute{AttrNoCD, AttrConfirm, AttrQuiet} {
		if !recipe.Attributes.Has(attr) {
			t.Errorf("missing attribute %s", attr)
		}
	}
}

func TestParse_DocAboveAttributes(t *testing.T) {
	file := parseString(t,
		"# Deploy to production.\n[confirm]\ndeploy:\n  true\n")

	recipe, _ := file.Recipe("deploy")

	if recipe.Doc != "Deploy to production." {
		t.Errorf("doc: got %q", recipe.Doc)
	}
}

func TestParse_DetachedCommentIsNotDoc(t *testing.T) {
	file := parseString(t,
		"# Far away comment.\n\n\nbuild:\n  true\n")

	recipe, _ := file.Recipe("build")

	if recipe.Doc != "" {
		t.Errorf("doc: got %q, want empty", recipe.Doc)
	}
}

func TestParse_BodyFragments(t *testing.T) {
	file := parseString(t, "greet name:\n  echo hello {{ name }}!\n")

	recipe, _ := file.Recipe("greet")

	if len(recipe.Body) != 1 {
		t.Fatalf("body lines: got %d, want 1", len(recipe.Body))
	}

	frags := recipe.Body[0].Fragments
	if len(frags) != 3 {
		t.Fatalf("fragments: got %d, want 3: %+v", len(frags), frags)
	}

	if frags[0].Text != "echo hello " || frags[0].Interp != nil {
		t.Errorf("fragment 0: got %+v", frags[0])
	}

	if frags[1].Interp == nil || frags[1].Interp.Name != "name" {
		t.Errorf("fragment 1: got %+v", frags[1])
	}

	if frags[2].Text != "!" {
		t.Errorf("fragment 2: got %+v", frags[2])
	}
}

func TestParse_LineContinuation(t *testing.T) {
	file := parseString(t, "build:\n  echo one \\\n  two\n")

	recipe, _ := file.Recipe("build")

	if len(recipe.Body) != 1 {
		t.Fatalf("body lines: got %d, want 1", len(recipe.Body))
	}

	if got := recipe.Body[0].Fragments[0].Text; got != "echo one two" {
		t.Errorf("continued line: got %q", got)
	}
}

func TestParse_Expressions(t *testing.T) {
	tests := []struct {
		name  string
		input string // assignment right-hand side
		want  *Expr
	}{
		{
			name:  "string literal",
			input: `"hello"`,
			want:  &Expr{Kind: ExprString, Str: "hello"},
		},
		{
			name:  "raw string keeps escapes",
			input: `'a\nb'`,
			want:  &Expr{Kind: ExprString, Str: `a\nb`},
		},
		{
			name:  "cooked string unescapes",
			input: `"a\nb"`,
			want:  &Expr{Kind: ExprString, Str: "a\nb"},
		},
		{
			name:  "concatenation",
			input: `"a" + "b" + "c"`,
			want: &Expr{
				Kind: ExprConcat,
				Lhs: &Expr{
					Kind: ExprConcat,
					Lhs:  &Expr{Kind: ExprString, Str: "a"},
					Rhs:  &Expr{Kind: ExprString, Str: "b"},
				},
				Rhs: &Expr{Kind: ExprString, Str: "c"},
			},
		},
		{
			name:  "function call",
			input: `env_var_or_default("HOME", "/root")`,
			want: &Expr{
				Kind: ExprCall,
				Name: "env_var_or_default",
				Args: []*Expr{
					{Kind: ExprString, Str: "HOME"},
					{Kind: ExprString, Str: "/root"},
				},
			},
		},
		{
			name:  "conditional",
			input: `if os() == "linux" { "l" } else { "o" }`,
			want: &Expr{
				Kind:     ExprIf,
				Operator: OpEquals,
				Lhs:      &Expr{Kind: ExprCall, Name: "os"},
				Rhs:      &Expr{Kind: ExprString, Str: "linux"},
				Then:     &Expr{Kind: ExprString, Str: "l"},
				Else:     &Expr{Kind: ExprString, Str: "o"},
			},
		},
		{
			name:  "grouped concat",
			input: `("a" + "b")`,
			want: &Expr{
				Kind: ExprGroup,
				Inner: &Expr{
					Kind: ExprConcat,
					Lhs:  &Expr{Kind: ExprString, Str: "a"},
					Rhs:  &Expr{Kind: ExprString, Str: "b"},
				},
			},
		},
		{
			name:  "backtick",
			input: "`uname -s`",
			want:  &Expr{Kind: ExprBacktick, Str: "uname -s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := parseString(t, "x := "+tt.input+"\n")

			a, ok := file.Assignment("x")
			if !ok {
				t.Fatal("assignment x not found")
			}

			if diff := cmp.Diff(tt.want, a.Value, exprCmp); diff != "" {
				t.Errorf("expression mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{
			name:  "unknown setting",
			input: "set nonsense := true\n",
			want:  ErrUnknownSetting,
		},
		{
			name:  "unknown attribute",
			input: "[sparkly]\nbuild:\n  true\n",
			want:  ErrUnknownAttribute,
		},
		{
			name:  "duplicate attribute",
			input: "[quiet, quiet]\nbuild:\n  true\n",
			want:  ErrDuplicateAttribute,
		},
		{
			name:  "required after default",
			input: "build a='1' b:\n  true\n",
			want:  ErrRequiredAfterDefault,
		},
		{
			name:  "parameter after variadic",
			input: "build *rest more:\n  true\n",
			want:  ErrParameterAfterVariadic,
		},
		{
			name:  "duplicate parameter",
			input: "build a a:\n  true\n",
			want:  ErrDuplicateParameter,
		},
		{
			name:  "attributes without recipe",
			input: "[quiet]\n",
			want:  ErrUnexpectedToken,
		},
		{
			name:  "missing conditional else",
			input: "x := if \"a\" == \"b\" { \"c\" }\n",
			want:  ErrUnexpectedToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), tt.input)
			if err == nil {
				t.Fatal("expected error, got none")
			}

			if !errors.Is(err, ErrParse) {
				t.Errorf("error %v does not wrap ErrParse", err)
			}

			if !errors.Is(err, tt.want) {
				t.Errorf("error %v does not wrap %v", err, tt.want)
			}
		})
	}
}

func TestParse_DuplicatesAccumulate(t *testing.T) {
	src := strings.Join([]string{
		"x := \"1\"",
		"x := \"2\"",
		"build:",
		"  true",
		"build:",
		"  true",
		"alias b := build",
		"alias b := build",
		"",
	}, "\n")

	_, err := Parse(context.Background(), src)
	if err == nil {
		t.Fatal("expected error, got none")
	}

	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("error %v does not wrap ErrDuplicateName", err)
	}

	// One joined entry per duplicate: the assignment, the recipe, and
	// the alias.
	msg := err.Error()

	if got := strings.Count(msg, "duplicate definition"); got != 3 {
		t.Errorf("error %q reports %d duplicates, want 3", msg, got)
	}
}

func TestParse_DefaultRecipe(t *testing.T) {
	file := parseString(t, "first:\n  true\nsecond:\n  true\n")

	def, ok := file.DefaultRecipe()
	if !ok || def.Name != "first" {
		t.Errorf("default recipe: got %v, %v", def, ok)
	}
}

func TestParse_PrivateRecipes(t *testing.T) {
	file := parseString(t,
		"_hidden:\n  true\n[private]\nshy:\n  true\nseen:\n  true\n")

	for name, private := range map[string]bool{
		"_hidden": true,
		"shy":     true,
		"seen":    false,
	} {
		recipe, ok := file.Recipe(name)
		if !ok {
			t.Fatalf("recipe %s not found", name)
		}

		if recipe.Private() != private {
			t.Errorf("%s: private = %v, want %v", name, recipe.Private(), private)
		}
	}
}

func TestParse_Imports(t *testing.T) {
	file := parseString(t, "import 'lib/common.chef'\nbuild:\n  true\n")

	if len(file.Imports) != 1 || file.Imports[0].Path != "lib/common.chef" {
		t.Errorf("imports: got %+v", file.Imports)
	}
}

func TestParse_ExportAssignment(t *testing.T) {
	file := parseString(t, "export RUST_LOG := \"debug\"\nplain := \"x\"\n")

	a, _ := file.Assignment("RUST_LOG")
	if a == nil || !a.Export {
		t.Errorf("exported assignment: got %+v", a)
	}

	b, _ := file.Assignment("plain")
	if b == nil || b.Export {
		t.Errorf("plain assignment: got %+v", b)
	}
}

func TestParse_EscapedInterpolation(t *testing.T) {
	// A recipe named like a contextual keyword still parses as a recipe.
	file := parseString(t, "set:\n  echo setting up\n")

	if _, ok := file.Recipe("set"); !ok {
		t.Error("recipe named set not found")
	}
}
