// Package source fetches raw signal from external sources: package
// registries for upstream versions and community sites for discussions.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Error variables for source errors
var (
	// ErrFetchFailed is returned when a source cannot be fetched
	ErrFetchFailed = errors.New("failed to fetch source")
	// ErrParseFailed is returned when a source response cannot be parsed.
	// Callers treat it the same as a fetch failure.
	ErrParseFailed = errors.New("failed to parse source response")
)

// Record is a single piece of community discussion fetched from a source.
// Immutable once fetched.
type Record struct {
	// Source is the human-readable name of the originating source
	Source string `json:"source"`
	// Title is the discussion title
	Title string `json:"title"`
	// URL is the canonical link to the discussion
	URL string `json:"url"`
	// Engagement is the raw engagement metric (upvotes, comments, stars)
	Engagement int `json:"engagement"`
	// PublishedAt is when the discussion was published
	PublishedAt time.Time `json:"published_at"`
	// Body is the free-text body or summary used for similarity comparison
	Body string `json:"body,omitempty"`
}

// VersionResult is one upstream version observation from a registry.
type VersionResult struct {
	// Ecosystem is the registry kind: pypi, npm, github, custom
	Ecosystem string
	// Name is the tracked tool name
	Name string
	// Version is the upstream version string
	Version string
}

// Identity returns the baseline key for this observation ("ecosystem/name").
func (v VersionResult) Identity() string {
	return v.Ecosystem + "/" + v.Name
}

// SignalConnector fetches discussion records from one community source.
type SignalConnector interface {
	// Name returns the source's configured name
	Name() string
	// Fetch returns the source's current records. A failed source returns
	// an error wrapping ErrFetchFailed; callers continue with partial data.
	Fetch(ctx context.Context) ([]Record, error)
}

// VersionConnector fetches the upstream version of one tracked tool.
type VersionConnector interface {
	// Name returns the tracked tool's configured name
	Name() string
	// FetchVersion returns the current upstream version observation
	FetchVersion(ctx context.Context) (VersionResult, error)
}

// Failure records a source that could not be fetched during a run.
// Failures end up in the report's omissions list.
type Failure struct {
	Source string `json:"source"`
	Reason string `json:"reason"`
}

// NewFailure builds a Failure from a fetch error, classifying timeouts.
func NewFailure(name string, err error) Failure {
	reason := "error"
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		reason = "timeout"
	case errors.Is(err, ErrParseFailed):
		reason = "parse error"
	case errors.Is(err, ErrFetchFailed):
		reason = "fetch error"
	}
	return Failure{Source: name, Reason: fmt.Sprintf("%s: %v", reason, err)}
}
