package track

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Error variables for baseline store errors
var (
	// ErrBaselineCorrupted is returned when the baseline file cannot be parsed
	ErrBaselineCorrupted = errors.New("baseline file is corrupted")
	// ErrPersistFailed is returned when the baseline cannot be written atomically
	ErrPersistFailed = errors.New("failed to persist baseline")
)

// baselineFile is the JSON structure stored on disk, keyed "ecosystem/name"
type baselineFile struct {
	Packages map[string]TrackedPackage `json:"packages"`
}

// Baseline is the persisted record of previously observed package versions.
// Loaded at run start, mutated via Diff, persisted at run end.
type Baseline struct {
	// Packages holds tracked packages keyed by "ecosystem/name"
	Packages map[string]TrackedPackage
	// path is the file path where the baseline is persisted
	path string
}

// LoadBaseline reads the baseline from disk.
// A missing file yields an empty baseline: every fetched version then
// registers as a new-change. A malformed file is a hard error because
// overwriting it would silently discard history.
func LoadBaseline(path string) (*Baseline, error) {
	baseline := &Baseline{
		Packages: make(map[string]TrackedPackage),
		path:     path,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return baseline, nil
		}
		return nil, fmt.Errorf("failed to read baseline file: %w", err)
	}

	var bf baselineFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBaselineCorrupted, err)
	}
	if bf.Packages != nil {
		baseline.Packages = bf.Packages
	}

	return baseline, nil
}

// Path returns the file path the baseline persists to.
func (b *Baseline) Path() string {
	return b.path
}

// Len returns the number of tracked packages.
func (b *Baseline) Len() int {
	return len(b.Packages)
}

// Save persists the baseline to disk atomically (write-temp-then-rename),
// creating the parent directory when needed.
func (b *Baseline) Save() error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	data, err := json.MarshalIndent(baselineFile{Packages: b.Packages}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	data = append(data, '\n')

	tmpPath := b.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	if err := os.Rename(tmpPath, b.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}

	return nil
}
