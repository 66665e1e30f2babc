// Package track compares fetched upstream versions against a persisted
// baseline and decides which tracked tools changed.
package track

import (
	goversion "github.com/hashicorp/go-version"
)

// IsNewer reports whether fetched is a change relative to current.
// When both strings parse as semantic versions the comparison uses
// semantic ordering and only a strictly greater fetched version counts.
// Otherwise any inequality counts as a change: registries occasionally
// publish tags like "2026.08.1-nightly" that no semver parser accepts,
// and silently ignoring those would hide real releases.
func IsNewer(fetched, current string) bool {
	if fetched == current {
		return false
	}

	fv, ferr := goversion.NewVersion(fetched)
	cv, cerr := goversion.NewVersion(current)
	if ferr == nil && cerr == nil {
		return fv.GreaterThan(cv)
	}

	return true
}

// Compare returns -1, 0, or 1 ordering two version strings.
// Semantic ordering when both parse, lexicographic otherwise.
func Compare(a, b string) int {
	av, aerr := goversion.NewVersion(a)
	bv, berr := goversion.NewVersion(b)
	if aerr == nil && berr == nil {
		return av.Compare(bv)
	}

	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
