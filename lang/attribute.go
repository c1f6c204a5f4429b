package lang

import "runtime"

// Attribute is a recognized recipe annotation.
type Attribute string

const (
	// AttrNoCD runs the recipe from the invocation directory instead of
	// the recipe file's directory.
	AttrNoCD Attribute = "no-cd"
	// AttrNoExitMessage suppresses the failure message when the recipe
	// exits non-zero.
	AttrNoExitMessage Attribute = "no-exit-message"
	// AttrPrivate hides the recipe from listings.
	AttrPrivate Attribute = "private"
	// AttrConfirm prompts for confirmation before the recipe runs.
	AttrConfirm Attribute = "confirm"
	// AttrQuiet suppresses echoing of every line in the recipe body.
	AttrQuiet Attribute = "quiet"

	// Platform attributes restrict a recipe to one platform; the recipe
	// is skipped, not failed, elsewhere.
	AttrLinux   Attribute = "linux"
	AttrMacOS   Attribute = "macos"
	AttrUnix    Attribute = "unix"
	AttrWindows Attribute = "windows"
)

// attributes is the closed set of recognized attribute names.
var attributes = map[Attribute]bool{
	AttrNoCD:          true,
	AttrNoExitMessage: true,
	AttrPrivate:       true,
	AttrConfirm:       true,
	AttrQuiet:         true,
	AttrLinux:         true,
	AttrMacOS:         true,
	AttrUnix:          true,
	AttrWindows:       true,
}

// KnownAttribute reports whether name is a recognized attribute.
func KnownAttribute(name string) bool {
	return attributes[Attribute(name)]
}

// AttributeSet is an ordered, duplicate-free collection of attributes.
type AttributeSet []Attribute

// Has reports whether the set contains the given attribute.
func (s AttributeSet) Has(attr Attribute) bool {
	for _, a := range s {
		if a == attr {
			return true
		}
	}

	return false
}

// platform reports whether the attribute names a platform restriction.
func (a Attribute) platform() bool {
	switch a {
	case AttrLinux, AttrMacOS, AttrUnix, AttrWindows:
		return true
	default:
		return false
	}
}

// EnabledOnHost reports whether the set permits execution on the current
// platform. A set with no platform attributes permits every platform;
// otherwise at least one platform attribute must match.
func (s AttributeSet) EnabledOnHost() bool {
	restricted := false

	for _, a := range s {
		if !a.platform() {
			continue
		}

		restricted = true

		switch a {
		case AttrLinux:
			if runtime.GOOS == "linux" {
				return true
			}
		case AttrMacOS:
			if runtime.GOOS == "darwin" {
				return true
			}
		case AttrWindows:
			if runtime.GOOS == "windows" {
				return true
			}
		case AttrUnix:
			if runtime.GOOS != "windows" {
				return true
			}
		}
	}

	return !restricted
}
