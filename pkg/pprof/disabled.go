//go:build !pprof

package pprof

// Modes returns an empty list when built without the pprof build tag.
func Modes() []string { return nil }

func start(_, _ string, _ bool) interface{ Stop() } { return ignore{} }
