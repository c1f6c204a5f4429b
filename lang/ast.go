package lang

import (
	"iter"
	"strings"

	"github.com/ardnew/chef/log"
)

// File is the AST root for a single logical recipe file after all imports
// have been merged. It is mutable only while parsing and import resolution
// run; afterward it is treated as read-only.
type File struct {
	// Path is the absolute path of the root source file, or empty when
	// parsed from a string.
	Path string

	Settings    Settings      `yaml:"settings"`
	Assignments []*Assignment `yaml:"assignments"`
	Aliases     []*Alias      `yaml:"aliases"`
	Recipes     []*Recipe     `yaml:"recipes"`
	Imports     []*Import     `yaml:"imports,omitempty"`

	recipeIndex map[string]*Recipe
	assignIndex map[string]*Assignment
	aliasIndex  map[string]*Alias
	logger      log.Logger
}

// Option applies a configuration option to a File.
type Option func(*File)

// WithLogger returns an option that attaches a structured logger to the
// parsed File. Parsing and evaluation emit trace-level diagnostics to it.
func WithLogger(logger log.Logger) Option {
	return func(f *File) {
		f.logger = logger
	}
}

// Logger returns the logger attached with [WithLogger], or a zero logger
// that discards all messages.
func (f *File) Logger() log.Logger { return f.logger }

// Recipe returns the recipe with the given name.
// Returns (nil, false) if the recipe is not found.
func (f *File) Recipe(name string) (*Recipe, bool) {
	r, ok := f.recipeIndex[name]

	return r, ok
}

// Assignment returns the assignment with the given name.
// Returns (nil, false) if the assignment is not found.
func (f *File) Assignment(name string) (*Assignment, bool) {
	a, ok := f.assignIndex[name]

	return a, ok
}

// Alias returns the alias with the given name.
// Returns (nil, false) if the alias is not found.
func (f *File) Alias(name string) (*Alias, bool) {
	a, ok := f.aliasIndex[name]

	return a, ok
}

// DefaultRecipe returns the first recipe declared in the file, which runs
// when no target is requested. Returns (nil, false) for a file without
// recipes.
func (f *File) DefaultRecipe() (*Recipe, bool) {
	if len(f.Recipes) == 0 {
		return nil, false
	}

	return f.Recipes[0], true
}

// All returns an iterator over all recipes in declaration order.
func (f *File) All() iter.Seq[*Recipe] {
	return func(yield func(*Recipe) bool) {
		for _, r := range f.Recipes {
			if !yield(r) {
				return
			}
		}
	}
}

// buildIndex populates the name indices for O(1) lookups.
// Called once after parsing and again after import merging.
func (f *File) buildIndex() {
	f.recipeIndex = make(map[string]*Recipe, len(f.Recipes))
	for _, r := range f.Recipes {
		f.recipeIndex[r.Name] = r
	}

	f.assignIndex = make(map[string]*Assignment, len(f.Assignments))
	for _, a := range f.Assignments {
		f.assignIndex[a.Name] = a
	}

	f.aliasIndex = make(map[string]*Alias, len(f.Aliases))
	for _, a := range f.Aliases {
		f.aliasIndex[a.Name] = a
	}
}

// Settings is the fixed set of recognized file-wide toggles.
// The zero value holds every default.
type Settings struct {
	// Shell is the argv prefix used for per-line execution and backtick
	// substitution. Empty means the default ["sh", "-cu"].
	Shell []string `yaml:"shell,omitempty"`
	// DotenvLoad loads a .env file found beside the recipe file.
	DotenvLoad bool `yaml:"dotenv-load,omitempty"`
	// ExportAll exports every assignment to child process environments.
	ExportAll bool `yaml:"export,omitempty"`
	// PositionalArguments passes recipe arguments to the shell as
	// positional parameters in addition to variable substitution.
	PositionalArguments bool `yaml:"positional-arguments,omitempty"`
}

// DefaultShell is the shell argv used when no shell setting is present.
// The -u flag makes expansion of unset shell variables an error.
func DefaultShell() []string { return []string{"sh", "-cu"} }

// ShellArgv returns the configured shell argv, falling back to
// [DefaultShell].
func (s Settings) ShellArgv() []string {
	if len(s.Shell) == 0 {
		return DefaultShell()
	}

	return s.Shell
}

// Assignment binds a name to an expression at file scope.
type Assignment struct {
	Name string `yaml:"name"`
	// Export injects the evaluated value into every child process
	// environment.
	Export bool     `yaml:"export,omitempty"`
	Value  *Expr    `yaml:"value"`
	Pos    Position `yaml:"-"`
}

// Alias maps an alternate name to an existing recipe.
type Alias struct {
	Name   string   `yaml:"name"`
	Target string   `yaml:"target"`
	Pos    Position `yaml:"-"`
}

// Import references another recipe file whose declarations are merged into
// the importing namespace.
type Import struct {
	// Path is the literal import path, relative to the importing file.
	Path string   `yaml:"path"`
	Pos  Position `yaml:"-"`
}

// Recipe is a named, parameterized unit of work.
// A recipe with an empty body is valid (dependency-only).
type Recipe struct {
	Name string `yaml:"name"`
	// Doc is the comment line immediately above the recipe header,
	// shown in listings.
	Doc          string       `yaml:"doc,omitempty"`
	Attributes   AttributeSet `yaml:"attributes,omitempty"`
	Parameters   []Parameter  `yaml:"parameters,omitempty"`
	Dependencies []Dependency `yaml:"dependencies,omitempty"`
	Body         []Line       `yaml:"body,omitempty"`
	Pos          Position     `yaml:"-"`
}

// Private reports whether the recipe is hidden from listings, either via
// the private attribute or a leading underscore in its name.
func (r *Recipe) Private() bool {
	return r.Attributes.Has(AttrPrivate) || strings.HasPrefix(r.Name, "_")
}

// MinArity returns the number of required arguments: parameters without
// defaults, counting a "+" variadic without a default as one.
func (r *Recipe) MinArity() int {
	n := 0

	for _, p := range r.Parameters {
		if p.Default != nil {
			continue
		}

		if !p.Variadic || p.Plus {
			n++
		}
	}

	return n
}

// MaxArity returns the maximum number of accepted arguments,
// or -1 when a variadic parameter absorbs any count.
func (r *Recipe) MaxArity() int {
	if n := len(r.Parameters); n == 0 || !r.Parameters[len(r.Parameters)-1].Variadic {
		return n
	}

	return -1
}

// Parameter declares a recipe parameter.
// At most one parameter may be variadic, and only in trailing position.
type Parameter struct {
	Name string `yaml:"name"`
	// Default is the expression supplying a value when no argument is
	// given, or nil for a required parameter.
	Default *Expr `yaml:"default,omitempty"`
	// Variadic parameters absorb all remaining arguments, joined by
	// single spaces.
	Variadic bool `yaml:"variadic,omitempty"`
	// Plus marks a variadic parameter declared with "+", which requires
	// at least one argument unless a default is present. "*" accepts
	// zero.
	Plus bool     `yaml:"plus,omitempty"`
	Pos  Position `yaml:"-"`
}

// Dependency requires another recipe to run, with bound argument
// expressions, before the dependent recipe.
type Dependency struct {
	Target    string   `yaml:"target"`
	Arguments []*Expr  `yaml:"arguments,omitempty"`
	Pos       Position `yaml:"-"`
}

// Line is one renderable command line of a recipe body.
type Line struct {
	Fragments []Fragment `yaml:"fragments"`
	Pos       Position   `yaml:"-"`
}

// Fragment is either literal text or an interpolated expression.
// Exactly one of Text and Interp is meaningful; Interp nil means text.
type Fragment struct {
	Text   string `yaml:"text,omitempty"`
	Interp *Expr  `yaml:"interp,omitempty"`
}
