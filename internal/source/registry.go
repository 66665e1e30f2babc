package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/agentdev/toolwatch/internal/common/github"
)

// PyPIConnector checks the latest version of a package on PyPI.
type PyPIConnector struct {
	name    string
	pkg     string
	client  *Client
	baseURL string
}

// NewPyPIConnector creates a connector for the named PyPI package.
func NewPyPIConnector(name, pkg string, client *Client) *PyPIConnector {
	return &PyPIConnector{
		name:    name,
		pkg:     pkg,
		client:  client,
		baseURL: "https://pypi.org",
	}
}

// SetBaseURL overrides the registry endpoint, used by tests.
func (c *PyPIConnector) SetBaseURL(base string) {
	c.baseURL = base
}

// Name returns the tracked tool's configured name.
func (c *PyPIConnector) Name() string {
	return c.name
}

// FetchVersion queries the PyPI JSON API for the package's latest version.
func (c *PyPIConnector) FetchVersion(ctx context.Context) (VersionResult, error) {
	endpoint := fmt.Sprintf("%s/pypi/%s/json", c.baseURL, url.PathEscape(c.pkg))

	body, err := c.client.GetBody(ctx, endpoint, nil)
	if err != nil {
		return VersionResult{}, err
	}

	var payload struct {
		Info struct {
			Version string `json:"version"`
		} `json:"info"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return VersionResult{}, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	if payload.Info.Version == "" {
		return VersionResult{}, fmt.Errorf("%w: no version in PyPI response for %s", ErrParseFailed, c.pkg)
	}

	return VersionResult{Ecosystem: "pypi", Name: c.name, Version: payload.Info.Version}, nil
}

// NPMConnector checks the latest version of a package on the npm registry.
type NPMConnector struct {
	name    string
	pkg     string
	client  *Client
	baseURL string
}

// NewNPMConnector creates a connector for the named npm package.
func NewNPMConnector(name, pkg string, client *Client) *NPMConnector {
	return &NPMConnector{
		name:    name,
		pkg:     pkg,
		client:  client,
		baseURL: "https://registry.npmjs.org",
	}
}

// SetBaseURL overrides the registry endpoint, used by tests.
func (c *NPMConnector) SetBaseURL(base string) {
	c.baseURL = base
}

// Name returns the tracked tool's configured name.
func (c *NPMConnector) Name() string {
	return c.name
}

// FetchVersion queries the npm registry for the package's latest dist-tag.
func (c *NPMConnector) FetchVersion(ctx context.Context) (VersionResult, error) {
	// Scoped packages keep their @scope/ prefix but the slash is escaped
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, strings.ReplaceAll(c.pkg, "/", "%2F"))

	body, err := c.client.GetBody(ctx, endpoint, nil)
	if err != nil {
		return VersionResult{}, err
	}

	var payload struct {
		DistTags map[string]string `json:"dist-tags"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return VersionResult{}, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	latest, ok := payload.DistTags["latest"]
	if !ok || latest == "" {
		return VersionResult{}, fmt.Errorf("%w: no latest dist-tag for %s", ErrParseFailed, c.pkg)
	}

	return VersionResult{Ecosystem: "npm", Name: c.name, Version: latest}, nil
}

// GitHubReleaseConnector checks the latest release tag of a GitHub repository.
type GitHubReleaseConnector struct {
	name   string
	owner  string
	repo   string
	client *github.Client
}

// NewGitHubReleaseConnector creates a connector for an "owner/repo" string.
func NewGitHubReleaseConnector(name, ownerRepo string, client *github.Client) (*GitHubReleaseConnector, error) {
	parts := strings.SplitN(ownerRepo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("invalid repository %q: expected owner/repo", ownerRepo)
	}
	return &GitHubReleaseConnector{
		name:   name,
		owner:  parts[0],
		repo:   parts[1],
		client: client,
	}, nil
}

// Name returns the tracked tool's configured name.
func (c *GitHubReleaseConnector) Name() string {
	return c.name
}

// FetchVersion queries the GitHub releases API for the latest release tag.
func (c *GitHubReleaseConnector) FetchVersion(ctx context.Context) (VersionResult, error) {
	release, err := c.client.LatestRelease(ctx, c.owner, c.repo)
	if err != nil {
		return VersionResult{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if release.TagName == "" {
		return VersionResult{}, fmt.Errorf("%w: empty release tag for %s/%s", ErrParseFailed, c.owner, c.repo)
	}

	return VersionResult{Ecosystem: "github", Name: c.name, Version: release.TagName}, nil
}

// CustomConnector checks a version from an arbitrary endpoint using a
// configured extractor.
type CustomConnector struct {
	name      string
	url       string
	extractor Extractor
	client    *Client
}

// NewCustomConnector creates a connector for a custom endpoint.
func NewCustomConnector(name, endpoint string, extractor Extractor, client *Client) *CustomConnector {
	return &CustomConnector{
		name:      name,
		url:       endpoint,
		extractor: extractor,
		client:    client,
	}
}

// Name returns the tracked tool's configured name.
func (c *CustomConnector) Name() string {
	return c.name
}

// FetchVersion fetches the endpoint and runs the configured extractor.
func (c *CustomConnector) FetchVersion(ctx context.Context) (VersionResult, error) {
	body, err := c.client.GetBody(ctx, c.url, nil)
	if err != nil {
		return VersionResult{}, err
	}

	version, err := c.extractor.Extract(body)
	if err != nil {
		return VersionResult{}, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	return VersionResult{Ecosystem: "custom", Name: c.name, Version: strings.TrimPrefix(version, "v")}, nil
}
