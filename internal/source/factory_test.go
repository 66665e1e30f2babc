package source

import (
	"errors"
	"testing"
	"time"

	"github.com/agentdev/toolwatch/internal/config"
)

func testSources() *config.Sources {
	return &config.Sources{
		Registries: map[string]config.RegistryConfig{
			"crewai":   {Type: config.RegistryPyPI, Package: "crewai"},
			"autogen":  {Type: config.RegistryGitHubRelease, Repo: "microsoft/autogen"},
			"mytool":   {Type: config.RegistryCustom, URL: "https://example.com/v.json", Parser: "json", Path: "version"},
			"aider":    {Type: config.RegistryPyPI, Package: "aider-chat"},
			"npm-tool": {Type: config.RegistryNPM, Package: "@scope/tool"},
		},
		Forums: map[string]config.ForumConfig{
			"openai":    {Type: config.ForumDiscourse, URL: "https://community.openai.com/latest"},
			"localllm":  {Type: config.ForumReddit, Subreddit: "LocalLLaMA"},
			"feeds":     {Type: config.ForumRSS, URL: "https://hnrss.org/newest"},
			"disc":      {Type: config.ForumGitHubDiscussions, Repos: []string{"a/b"}},
			"trending":  {Type: config.ForumGitHubSearch, Topics: []string{"ai-agents"}},
		},
	}
}

func TestBuildConnectors(t *testing.T) {
	connectors, err := Build(testSources(), 7*24*time.Hour, NewClient(), 10*time.Second)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(connectors.Versions) != 5 {
		t.Errorf("expected 5 version connectors, got %d", len(connectors.Versions))
	}
	if len(connectors.Signals) != 5 {
		t.Errorf("expected 5 signal connectors, got %d", len(connectors.Signals))
	}
	if len(connectors.Disabled) != 0 {
		t.Errorf("expected no disabled sources, got %v", connectors.Disabled)
	}

	// Names come back sorted for deterministic runs
	for i := 1; i < len(connectors.Versions); i++ {
		if connectors.Versions[i-1].Name() >= connectors.Versions[i].Name() {
			t.Errorf("version connectors not sorted: %s before %s",
				connectors.Versions[i-1].Name(), connectors.Versions[i].Name())
		}
	}
}

func TestBuildDisablesSourceWithMissingOptionalCredential(t *testing.T) {
	sources := testSources()
	sources.Forums["private"] = config.ForumConfig{
		Type:      config.ForumReddit,
		Subreddit: "secret",
		TokenEnv:  "TOOLWATCH_UNSET_CREDENTIAL",
	}

	connectors, err := Build(sources, 7*24*time.Hour, NewClient(), 10*time.Second)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(connectors.Disabled) != 1 || connectors.Disabled[0] != "private" {
		t.Errorf("expected private source disabled, got %v", connectors.Disabled)
	}
	if len(connectors.Signals) != 5 {
		t.Errorf("disabled source should not appear among signals, got %d", len(connectors.Signals))
	}
}

func TestBuildFailsOnMissingRequiredCredential(t *testing.T) {
	sources := testSources()
	sources.Forums["private"] = config.ForumConfig{
		Type:      config.ForumReddit,
		Subreddit: "secret",
		TokenEnv:  "TOOLWATCH_UNSET_CREDENTIAL",
		Required:  true,
	}

	_, err := Build(sources, 7*24*time.Hour, NewClient(), 10*time.Second)
	if !errors.Is(err, config.ErrMissingCredential) {
		t.Errorf("expected ErrMissingCredential, got %v", err)
	}
}

func TestBuildRejectsBadCustomExtractor(t *testing.T) {
	sources := &config.Sources{
		Registries: map[string]config.RegistryConfig{
			"bad": {Type: config.RegistryCustom, URL: "https://example.com", Parser: "regex", Pattern: "no group"},
		},
	}
	if _, err := Build(sources, time.Hour, NewClient(), time.Second); !errors.Is(err, ErrNoCaptureGroup) {
		t.Errorf("expected ErrNoCaptureGroup, got %v", err)
	}
}
