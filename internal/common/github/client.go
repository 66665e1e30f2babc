// Package github provides a thin client for the GitHub REST API endpoints
// the pipeline uses: latest releases, repository search, and discussions.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrRateLimit indicates GitHub API rate limit exceeded
	ErrRateLimit = errors.New("GitHub API rate limit exceeded")
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("GitHub resource not found")
	// ErrAPIError indicates a general GitHub API error
	ErrAPIError = errors.New("GitHub API error")
)

// Client handles communication with the GitHub API
type Client struct {
	BaseURL    string
	UserAgent  string
	Token      string // GitHub personal access token (optional, increases rate limit)
	HTTPClient *http.Client
}

// Release represents the subset of a GitHub release the pipeline consumes
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
	Prerelease  bool      `json:"prerelease"`
}

// Repository represents a repository from the search API
type Repository struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url"`
	Description string    `json:"description"`
	Stars       int       `json:"stargazers_count"`
	Language    string    `json:"language"`
	CreatedAt   time.Time `json:"created_at"`
}

// Discussion represents a repository discussion thread
type Discussion struct {
	Title     string    `json:"title"`
	HTMLURL   string    `json:"html_url"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Comments  int       `json:"comments"`
	Upvotes   int       `json:"upvote_count"`
}

// searchResult is the envelope returned by the search API
type searchResult struct {
	Items []Repository `json:"items"`
}

// NewClient creates a new GitHub API client
func NewClient() *Client {
	return &Client{
		BaseURL:   "https://api.github.com",
		UserAgent: "toolwatch/1.0",
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewClientWithOptions creates a new GitHub API client with custom options
func NewClientWithOptions(token string, timeout time.Duration) *Client {
	client := NewClient()
	client.Token = token
	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}
	return client
}

// LatestRelease fetches the latest release of a repository.
// The "v" prefix is stripped from the tag so callers get a bare version string.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.BaseURL, owner, repo)

	var release Release
	if err := c.getJSON(ctx, endpoint, &release); err != nil {
		return nil, err
	}

	release.TagName = strings.TrimPrefix(release.TagName, "v")
	return &release, nil
}

// SearchRepositories searches repositories by query, sorted by stars descending.
func (c *Client) SearchRepositories(ctx context.Context, query string, perPage int) ([]Repository, error) {
	if perPage <= 0 {
		perPage = 5
	}
	endpoint := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=%d",
		c.BaseURL, url.QueryEscape(query), perPage)

	var result searchResult
	if err := c.getJSON(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// ListDiscussions fetches recent discussions of a repository.
func (c *Client) ListDiscussions(ctx context.Context, owner, repo string) ([]Discussion, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/discussions", c.BaseURL, owner, repo)

	var discussions []Discussion
	if err := c.getJSON(ctx, endpoint, &discussions); err != nil {
		return nil, err
	}
	return discussions, nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		resetHeader := resp.Header.Get("X-RateLimit-Reset")
		return fmt.Errorf("%w: rate limit resets at %s", ErrRateLimit, resetHeader)
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrAPIError, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrAPIError, err)
	}
	return nil
}
