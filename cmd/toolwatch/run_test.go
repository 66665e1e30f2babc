package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/agentdev/toolwatch/internal/config"
	"github.com/agentdev/toolwatch/internal/docpatch"
	"github.com/agentdev/toolwatch/internal/pipeline"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"lock held", pipeline.ErrLockHeld, exitLockHeld},
		{"wrapped lock held", fmt.Errorf("run: %w", pipeline.ErrLockHeld), exitLockHeld},
		{"section not found", docpatch.ErrSectionNotFound, exitSectionNotFound},
		{"section ambiguous", docpatch.ErrSectionAmbiguous, exitSectionNotFound},
		{"no data", pipeline.ErrNoData, exitNoData},
		{"missing document path", config.ErrDocumentPathNotSet, exitConfigError},
		{"missing sources file", config.ErrSourcesFileNotFound, exitConfigError},
		{"missing credential", fmt.Errorf("forum %q: %w", "x", config.ErrMissingCredential), exitConfigError},
		{"anything else", errors.New("disk on fire"), exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
