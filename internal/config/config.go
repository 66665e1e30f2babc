// Package config loads the toolwatch application configuration and the
// source definitions file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrDocumentPathNotSet = errors.New("document path is not configured")
	ErrSectionNotSet      = errors.New("document section heading is not configured")
	ErrInvalidWeights     = errors.New("ranking weights must be non-negative and sum to a positive value")
	ErrInvalidWindow      = errors.New("ranking window must be at least one day")
)

// Config represents the application configuration
type Config struct {
	Paths    PathsConfig    `yaml:"paths"`
	Document DocumentConfig `yaml:"document"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Git      GitConfig      `yaml:"git"`
}

// PathsConfig holds filesystem locations used by a run
type PathsConfig struct {
	// Baseline is the persisted tracked-version store (JSON)
	Baseline string `yaml:"baseline"`
	// Sources is the TOML file defining registries and forums
	Sources string `yaml:"sources"`
	// Reports is the directory report files are written into
	Reports string `yaml:"reports"`
}

// DocumentConfig identifies the target document and the section to patch
type DocumentConfig struct {
	Path    string `yaml:"path"`
	Section string `yaml:"section"`
}

// RankingConfig holds signal ranking parameters
type RankingConfig struct {
	// WindowDays is the lookback window for signals (default 7)
	WindowDays int `yaml:"window_days"`
	// Top is the maximum number of surviving signals (default 10)
	Top int `yaml:"top"`
	// Similarity is the title token-set similarity threshold for dedup (default 0.6)
	Similarity float64 `yaml:"similarity"`
	// Weights are the scoring term weights
	Weights WeightsConfig `yaml:"weights"`
	// Keywords is the relevance keyword set matched against title+body
	Keywords []string `yaml:"keywords"`
}

// WeightsConfig holds the three scoring term weights
type WeightsConfig struct {
	Engagement float64 `yaml:"engagement"`
	Recency    float64 `yaml:"recency"`
	Keywords   float64 `yaml:"keywords"`
}

// FetchConfig holds network parameters for source fetching
type FetchConfig struct {
	// TimeoutSeconds is the per-request timeout (default 10)
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// Concurrency bounds the fetch worker pool (default 4)
	Concurrency int `yaml:"concurrency"`
	// DeadlineMinutes is the overall run deadline (default 5)
	DeadlineMinutes int `yaml:"deadline_minutes"`
}

// GitConfig holds the optional VCS hand-off settings
type GitConfig struct {
	// Enabled turns on commit+push of changed files after a successful run
	Enabled bool   `yaml:"enabled"`
	WorkDir string `yaml:"workdir"`
	User    string `yaml:"user"`
	Email   string `yaml:"email"`
}

// defaultKeywords is the relevance keyword set used when none is configured.
// Matches the vocabulary of the tooling this project tracks.
var defaultKeywords = []string{
	"agent", "ai", "llm", "gpt", "claude", "automation", "assistant",
	"langchain", "autogen", "crewai", "semantic", "kernel", "function",
	"tool", "api", "integration", "workflow", "orchestration", "mcp",
}

// Default returns a configuration populated with defaults
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Baseline: "baseline.json",
			Sources:  "sources.toml",
			Reports:  "reports",
		},
		Document: DocumentConfig{
			Path:    "README.md",
			Section: "## Trending Tools to Investigate",
		},
		Ranking: RankingConfig{
			WindowDays: 7,
			Top:        10,
			Similarity: 0.6,
			Weights: WeightsConfig{
				Engagement: 0.5,
				Recency:    0.3,
				Keywords:   0.2,
			},
			Keywords: defaultKeywords,
		},
		Fetch: FetchConfig{
			TimeoutSeconds:  10,
			Concurrency:     4,
			DeadlineMinutes: 5,
		},
	}
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ./toolwatch.yaml (project-local - priority)
// 2. ~/.config/toolwatch/config.yaml (XDG standard)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	// Check XDG_CONFIG_HOME first, fallback to ~/.config
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		"toolwatch.yaml",
		filepath.Join(xdgConfig, "toolwatch", "config.yaml"),
	}, nil
}

// Load reads the configuration from the first existing config path.
// Missing files are not an error: defaults are returned.
func Load() (*Config, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return nil, err
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return Default(), nil
}

// LoadFile reads and validates the configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for inconsistencies
func (c *Config) Validate() error {
	if c.Document.Path == "" {
		return ErrDocumentPathNotSet
	}
	if c.Document.Section == "" {
		return ErrSectionNotSet
	}
	if c.Ranking.WindowDays < 1 {
		return ErrInvalidWindow
	}

	w := c.Ranking.Weights
	if w.Engagement < 0 || w.Recency < 0 || w.Keywords < 0 {
		return ErrInvalidWeights
	}
	if w.Engagement+w.Recency+w.Keywords <= 0 {
		return ErrInvalidWeights
	}

	if c.Ranking.Top < 1 {
		c.Ranking.Top = 10
	}
	if c.Ranking.Similarity <= 0 || c.Ranking.Similarity > 1 {
		c.Ranking.Similarity = 0.6
	}
	if c.Fetch.TimeoutSeconds < 1 {
		c.Fetch.TimeoutSeconds = 10
	}
	if c.Fetch.Concurrency < 1 {
		c.Fetch.Concurrency = 4
	}
	if c.Fetch.DeadlineMinutes < 1 {
		c.Fetch.DeadlineMinutes = 5
	}

	return nil
}

// Window returns the ranking window as a duration
func (c *Config) Window() time.Duration {
	return time.Duration(c.Ranking.WindowDays) * 24 * time.Hour
}

// RequestTimeout returns the per-request timeout as a duration
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// RunDeadline returns the overall run deadline as a duration
func (c *Config) RunDeadline() time.Duration {
	return time.Duration(c.Fetch.DeadlineMinutes) * time.Minute
}
