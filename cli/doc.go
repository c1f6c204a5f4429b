// Package cli contains the command line interface for chef.
//
// The default command runs recipes from the nearest recipe file, so all
// of these are equivalent when "build" is a recipe:
//
//	chef build
//	chef run build
//
// Recipe files are named "cheffile" or "Cheffile" and are found by
// searching upward from the working directory. The --file flag overrides
// the search.
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu,
//     goroutine, heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory
package cli
