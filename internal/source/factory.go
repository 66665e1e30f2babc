package source

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/agentdev/toolwatch/internal/common/github"
	"github.com/agentdev/toolwatch/internal/common/logger"
	"github.com/agentdev/toolwatch/internal/config"
)

// githubTokenEnv is the default credential for GitHub-backed sources
const githubTokenEnv = "GITHUB_TOKEN"

// Connectors is the set of connectors built from a sources definition.
type Connectors struct {
	Versions []VersionConnector
	Signals  []SignalConnector
	// Disabled lists sources skipped because an optional credential is unset
	Disabled []string
}

// Build constructs connectors for every configured source.
// Sources whose optional credential is missing are disabled with a warning;
// a missing required credential is a configuration error.
// Iteration is sorted by name so runs are deterministic.
func Build(sources *config.Sources, window time.Duration, httpClient *Client, timeout time.Duration) (*Connectors, error) {
	ghClient := github.NewClientWithOptions(os.Getenv(githubTokenEnv), timeout)

	result := &Connectors{}

	for _, name := range sortedKeys(sources.Registries) {
		reg := sources.Registries[name]
		connector, err := buildRegistry(name, reg, httpClient, ghClient)
		if err != nil {
			return nil, fmt.Errorf("registry %q: %w", name, err)
		}
		result.Versions = append(result.Versions, connector)
	}

	for _, name := range sortedKeys(sources.Forums) {
		forum := sources.Forums[name]

		token, enabled, err := forum.Credential()
		if err != nil {
			return nil, fmt.Errorf("forum %q: %w", name, err)
		}
		if !enabled {
			logger.Warn("source %s disabled: credential %s is not set", name, forum.TokenEnv)
			result.Disabled = append(result.Disabled, name)
			continue
		}

		connector, err := buildForum(name, forum, token, window, httpClient, ghClient, timeout)
		if err != nil {
			return nil, fmt.Errorf("forum %q: %w", name, err)
		}
		result.Signals = append(result.Signals, connector)
	}

	return result, nil
}

func buildRegistry(name string, reg config.RegistryConfig, httpClient *Client, ghClient *github.Client) (VersionConnector, error) {
	switch reg.Type {
	case config.RegistryPyPI:
		return NewPyPIConnector(name, reg.Package, httpClient), nil
	case config.RegistryNPM:
		return NewNPMConnector(name, reg.Package, httpClient), nil
	case config.RegistryGitHubRelease:
		return NewGitHubReleaseConnector(name, reg.Repo, ghClient)
	case config.RegistryCustom:
		extractor, err := NewExtractor(reg.Parser, reg.Path, reg.Pattern, reg.Selector, reg.XPath)
		if err != nil {
			return nil, err
		}
		return NewCustomConnector(name, reg.URL, extractor, httpClient), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidSourceType, reg.Type)
	}
}

func buildForum(name string, forum config.ForumConfig, token string, window time.Duration, httpClient *Client, ghClient *github.Client, timeout time.Duration) (SignalConnector, error) {
	switch forum.Type {
	case config.ForumDiscourse:
		return NewDiscourseConnector(name, forum.URL, httpClient), nil
	case config.ForumReddit:
		return NewRedditConnector(name, forum.Subreddit, token, httpClient), nil
	case config.ForumGitHubDiscussions:
		client := ghClient
		if token != "" {
			client = github.NewClientWithOptions(token, timeout)
		}
		return NewDiscussionsConnector(name, forum.Repos, window, client), nil
	case config.ForumGitHubSearch:
		client := ghClient
		if token != "" {
			client = github.NewClientWithOptions(token, timeout)
		}
		return NewSearchConnector(name, forum.Topics, forum.MinStars, window, client), nil
	case config.ForumRSS:
		return NewRSSConnector(name, forum.URL, timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidSourceType, forum.Type)
	}
}

func sortedKeys[M map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
