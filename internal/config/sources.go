package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Error variables for source definition errors
var (
	// ErrSourcesFileNotFound is returned when the sources file does not exist
	ErrSourcesFileNotFound = errors.New("sources file not found")
	// ErrInvalidSourceType is returned when a source declares an unknown type
	ErrInvalidSourceType = errors.New("invalid source type")
	// ErrMissingPackage is returned when a registry source is missing the package field
	ErrMissingPackage = errors.New("missing required field: package")
	// ErrMissingRepo is returned when a GitHub source is missing the repo field
	ErrMissingRepo = errors.New("missing required field: repo")
	// ErrMissingURL is returned when a source is missing the required url field
	ErrMissingURL = errors.New("missing required field: url")
	// ErrMissingSubreddit is returned when a reddit source is missing the subreddit field
	ErrMissingSubreddit = errors.New("missing required field: subreddit")
	// ErrMissingParser is returned when a custom registry is missing the parser field
	ErrMissingParser = errors.New("missing required field: parser")
	// ErrMissingCredential is returned when a required credential env var is unset
	ErrMissingCredential = errors.New("required credential is not set")
)

// Registry source types
const (
	RegistryPyPI          = "pypi"
	RegistryNPM           = "npm"
	RegistryGitHubRelease = "github-release"
	RegistryCustom        = "custom"
)

// Forum source types
const (
	ForumDiscourse         = "discourse"
	ForumReddit            = "reddit"
	ForumGitHubDiscussions = "github-discussions"
	ForumGitHubSearch      = "github-search"
	ForumRSS               = "rss"
)

// RegistryConfig defines how to check the upstream version of one tracked tool.
type RegistryConfig struct {
	// Type is the registry kind: pypi, npm, github-release, or custom
	Type string `toml:"type"`
	// Package is the registry package name (pypi/npm)
	Package string `toml:"package,omitempty"`
	// Repo is the owner/name GitHub repository (github-release)
	Repo string `toml:"repo,omitempty"`
	// URL is the endpoint to query (custom)
	URL string `toml:"url,omitempty"`
	// Parser selects version extraction for custom sources: json, regex, or html
	Parser string `toml:"parser,omitempty"`
	// Path is the JSON path to the version field (json parser)
	Path string `toml:"path,omitempty"`
	// Pattern is the regex pattern with capture group (regex parser)
	Pattern string `toml:"pattern,omitempty"`
	// Selector is the CSS selector (html parser)
	Selector string `toml:"selector,omitempty"`
	// XPath is the XPath expression (html parser, alternative to Selector)
	XPath string `toml:"xpath,omitempty"`
	// Description is carried into reports
	Description string `toml:"description,omitempty"`
}

// ForumConfig defines one community source to monitor for signals.
type ForumConfig struct {
	// Type is the forum kind: discourse, reddit, github-discussions,
	// github-search, or rss
	Type string `toml:"type"`
	// URL is the endpoint to scrape or fetch (discourse, rss)
	URL string `toml:"url,omitempty"`
	// Subreddit is the subreddit name without the r/ prefix (reddit)
	Subreddit string `toml:"subreddit,omitempty"`
	// Repos lists owner/name repositories (github-discussions)
	Repos []string `toml:"repos,omitempty"`
	// Topics lists GitHub search topics (github-search)
	Topics []string `toml:"topics,omitempty"`
	// MinStars filters github-search results (default 50)
	MinStars int `toml:"min_stars,omitempty"`
	// TokenEnv names the environment variable holding this source's credential
	TokenEnv string `toml:"token_env,omitempty"`
	// Required marks the credential as mandatory: a run aborts with a
	// configuration error when it is missing. Optional credentials merely
	// disable the source with a warning.
	Required bool `toml:"required,omitempty"`
}

// Sources is the parsed sources.toml: tracked registries and monitored forums.
type Sources struct {
	Registries map[string]RegistryConfig `toml:"registries"`
	Forums     map[string]ForumConfig    `toml:"forums"`
}

// LoadSources reads and validates the sources definition file.
func LoadSources(path string) (*Sources, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourcesFileNotFound, path)
		}
		return nil, err
	}

	var sources Sources
	if _, err := toml.DecodeFile(path, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}

	if err := sources.Validate(); err != nil {
		return nil, err
	}

	return &sources, nil
}

// Validate checks every source definition for completeness.
func (s *Sources) Validate() error {
	for name, reg := range s.Registries {
		if err := validateRegistry(reg); err != nil {
			return fmt.Errorf("registry %q: %w", name, err)
		}
	}
	for name, forum := range s.Forums {
		if err := validateForum(forum); err != nil {
			return fmt.Errorf("forum %q: %w", name, err)
		}
	}
	return nil
}

func validateRegistry(reg RegistryConfig) error {
	switch reg.Type {
	case RegistryPyPI, RegistryNPM:
		if reg.Package == "" {
			return ErrMissingPackage
		}
	case RegistryGitHubRelease:
		if reg.Repo == "" {
			return ErrMissingRepo
		}
	case RegistryCustom:
		if reg.URL == "" {
			return ErrMissingURL
		}
		if reg.Parser == "" {
			return ErrMissingParser
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSourceType, reg.Type)
	}
	return nil
}

func validateForum(forum ForumConfig) error {
	switch forum.Type {
	case ForumDiscourse, ForumRSS:
		if forum.URL == "" {
			return ErrMissingURL
		}
	case ForumReddit:
		if forum.Subreddit == "" {
			return ErrMissingSubreddit
		}
	case ForumGitHubDiscussions:
		if len(forum.Repos) == 0 {
			return ErrMissingRepo
		}
	case ForumGitHubSearch:
		if len(forum.Topics) == 0 {
			return fmt.Errorf("%w: github-search requires at least one topic", ErrInvalidSourceType)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidSourceType, forum.Type)
	}
	return nil
}

// Credential resolves a forum's credential from the environment.
// Returns the token, whether the source should be enabled, and an error when
// a required credential is missing.
func (f *ForumConfig) Credential() (token string, enabled bool, err error) {
	if f.TokenEnv == "" {
		return "", true, nil
	}
	token = os.Getenv(f.TokenEnv)
	if token != "" {
		return token, true, nil
	}
	if f.Required {
		return "", false, fmt.Errorf("%w: %s", ErrMissingCredential, f.TokenEnv)
	}
	return "", false, nil
}

// Ecosystem maps a registry type to its baseline ecosystem key.
func (r *RegistryConfig) Ecosystem() string {
	switch r.Type {
	case RegistryPyPI:
		return "pypi"
	case RegistryNPM:
		return "npm"
	case RegistryGitHubRelease:
		return "github"
	default:
		return "custom"
	}
}
