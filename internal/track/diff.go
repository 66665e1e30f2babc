package track

import (
	"sort"
	"time"
)

// NoVersion is the old-version placeholder for a newly tracked tool.
const NoVersion = "none"

// TrackedPackage is one tool whose upstream version the baseline records.
type TrackedPackage struct {
	// Ecosystem is the registry kind: pypi, npm, github, custom
	Ecosystem string `json:"ecosystem"`
	// Name is the tracked tool name
	Name string `json:"name"`
	// Version is the last observed upstream version
	Version string `json:"version"`
	// LastChecked is when the version was last confirmed
	LastChecked time.Time `json:"last_checked"`
}

// Identity returns the baseline key ("ecosystem/name").
func (p TrackedPackage) Identity() string {
	return p.Ecosystem + "/" + p.Name
}

// VersionChange records one observed upstream version change.
// Created transiently per run; only the updated TrackedPackage persists.
type VersionChange struct {
	// Package identifies the changed tool
	Package TrackedPackage `json:"package"`
	// OldVersion is the baseline version, NoVersion for new tools
	OldVersion string `json:"old_version"`
	// NewVersion is the freshly observed version
	NewVersion string `json:"new_version"`
	// DetectedAt is when the change was observed
	DetectedAt time.Time `json:"detected_at"`
}

// Observation is one fetched (identity, version) pair handed to Diff.
type Observation struct {
	Ecosystem string
	Name      string
	Version   string
}

// Identity returns the baseline key for this observation.
func (o Observation) Identity() string {
	return o.Ecosystem + "/" + o.Name
}

// Diff compares fetched observations against the tracked baseline and
// returns the changes, updating tracked in place with the new versions.
// A tool absent from the baseline is reported as a change from NoVersion.
// Diff performs no I/O: persisting the updated mapping is the caller's
// responsibility, after the changes have been consumed.
// Output is sorted by identity for deterministic reports.
func Diff(tracked map[string]TrackedPackage, fetched []Observation, now time.Time) []VersionChange {
	var changes []VersionChange

	for _, obs := range fetched {
		if obs.Version == "" {
			continue
		}
		key := obs.Identity()

		prev, known := tracked[key]
		if !known {
			pkg := TrackedPackage{
				Ecosystem:   obs.Ecosystem,
				Name:        obs.Name,
				Version:     obs.Version,
				LastChecked: now,
			}
			tracked[key] = pkg
			changes = append(changes, VersionChange{
				Package:    pkg,
				OldVersion: NoVersion,
				NewVersion: obs.Version,
				DetectedAt: now,
			})
			continue
		}

		prev.LastChecked = now
		if IsNewer(obs.Version, prev.Version) {
			old := prev.Version
			prev.Version = obs.Version
			changes = append(changes, VersionChange{
				Package:    prev,
				OldVersion: old,
				NewVersion: obs.Version,
				DetectedAt: now,
			})
		}
		tracked[key] = prev
	}

	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Package.Identity() < changes[j].Package.Identity()
	})

	return changes
}
