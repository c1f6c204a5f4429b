//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
)

// Version is the semantic version of the chef module embedded at build time.
// It is printed by the CLI when users invoke the version flag.
//
//go:embed VERSION
var Version string

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text and error prefixes.
	Name = "chef"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Recipe runner for command-line chores"
)

// Option applies a configuration option to a value of type T.
type Option[T any] func(T) T

// Make creates a new value of type T with the given options applied.
func Make[T any](opts ...Option[T]) T {
	var t T

	return Wrap(t, opts...)
}

// Wrap applies the given options to an existing value of type T.
func Wrap[T any](t T, opts ...Option[T]) T {
	for _, opt := range opts {
		t = opt(t)
	}

	return t
}
