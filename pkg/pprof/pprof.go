//go:build pprof

package pprof

import (
	"maps"
	"slices"

	"github.com/pkg/profile"

	_ "net/http/pprof"

	"github.com/ardnew/chef/pkg"
)

// Modes returns the profiling modes the CLI may request, sorted by
// name. The quiet option is a modifier rather than a mode, so it is
// excluded from the list.
func Modes() []string {
	m := maps.Clone(mode)
	delete(m, "quiet")

	return slices.Sorted(maps.Keys(m))
}

// mode maps each flag-facing mode name to the profile option enabling
// it.
var mode = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
	"quiet":     profile.Quiet,
}

// control accumulates the profile options selected for one run.
type control struct {
	mode []func(*profile.Profile)
}

// start begins profiling for the requested mode. An unrecognized mode
// profiles nothing, so a chef run never fails on account of its
// profiler.
func start(mode, path string, quiet bool) interface{ Stop() } {
	c := pkg.Make(withMode(mode))

	if len(c.mode) == 0 {
		return ignore{}
	}

	return profile.Start(
		pkg.Wrap(c, withPath(path), withQuiet(quiet)).mode...,
	)
}

func withMode(m string) pkg.Option[control] {
	return func(c control) control {
		if fn, ok := mode[m]; ok {
			c.mode = append(c.mode, fn)
		}

		return c
	}
}

func withPath(p string) pkg.Option[control] {
	return func(c control) control {
		if p != "" {
			c.mode = append(c.mode, profile.ProfilePath(p))
		}

		return c
	}
}

func withQuiet(v bool) pkg.Option[control] {
	return func(c control) control {
		if v {
			c.mode = append(c.mode, profile.Quiet)
		}

		return c
	}
}
