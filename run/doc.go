// Package run turns a parsed recipe file into executed commands: it
// builds and validates the dependency graph, plans a deduplicated,
// topologically ordered sequence of recipe invocations, and executes
// that plan one child process at a time.
//
// The entry point is [New], which validates everything that can fail
// before a process is spawned: alias targets, dependency references and
// arities, dependency cycles, and assignment value cycles. [Runner.Run]
// then plans and executes requested targets; planning is atomic, so a
// plan error means nothing ran.
package run
