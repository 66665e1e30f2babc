package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/agentdev/toolwatch/internal/common/github"
	"github.com/agentdev/toolwatch/internal/common/logger"
)

// DiscussionsConnector fetches recent discussions from a set of GitHub
// repositories and flattens them into one record stream.
type DiscussionsConnector struct {
	name   string
	repos  []string
	window time.Duration
	client *github.Client
	// nowFunc allows injecting time for testing
	nowFunc func() time.Time
}

// NewDiscussionsConnector creates a connector for the given owner/repo list.
// Discussions older than window are dropped at fetch time to keep the batch
// small; the ranker applies the window again for the merged stream.
func NewDiscussionsConnector(name string, repos []string, window time.Duration, client *github.Client) *DiscussionsConnector {
	return &DiscussionsConnector{
		name:    name,
		repos:   repos,
		window:  window,
		client:  client,
		nowFunc: time.Now,
	}
}

// SetNowFunc sets a custom time function for testing.
func (c *DiscussionsConnector) SetNowFunc(fn func() time.Time) {
	c.nowFunc = fn
}

// Name returns the source's configured name.
func (c *DiscussionsConnector) Name() string {
	return c.name
}

// Fetch returns recent discussions across all configured repositories.
// A repository that fails is skipped with a warning; the connector only
// fails when every repository fails.
func (c *DiscussionsConnector) Fetch(ctx context.Context) ([]Record, error) {
	cutoff := c.nowFunc().Add(-c.window)

	var records []Record
	var failures []error
	for _, ownerRepo := range c.repos {
		parts := strings.SplitN(ownerRepo, "/", 2)
		if len(parts) != 2 {
			failures = append(failures, fmt.Errorf("invalid repository %q", ownerRepo))
			continue
		}

		discussions, err := c.client.ListDiscussions(ctx, parts[0], parts[1])
		if err != nil {
			logger.Warn("skipping discussions for %s: %v", ownerRepo, err)
			failures = append(failures, fmt.Errorf("%s: %w", ownerRepo, err))
			continue
		}

		for _, d := range discussions {
			if d.CreatedAt.Before(cutoff) {
				continue
			}
			records = append(records, Record{
				Source:      c.name,
				Title:       d.Title,
				URL:         d.HTMLURL,
				Engagement:  d.Upvotes + d.Comments,
				PublishedAt: d.CreatedAt,
				Body:        d.Body,
			})
		}
	}

	if len(failures) == len(c.repos) && len(c.repos) > 0 {
		return nil, fmt.Errorf("%w: all repositories failed: %v", ErrFetchFailed, errors.Join(failures...))
	}

	return records, nil
}

// SearchConnector finds recently created repositories for a set of GitHub
// topics; stars serve as the engagement metric.
type SearchConnector struct {
	name     string
	topics   []string
	minStars int
	window   time.Duration
	perTopic int
	client   *github.Client
	// nowFunc allows injecting time for testing
	nowFunc func() time.Time
}

// NewSearchConnector creates a connector for the given topic list.
func NewSearchConnector(name string, topics []string, minStars int, window time.Duration, client *github.Client) *SearchConnector {
	if minStars <= 0 {
		minStars = 50
	}
	return &SearchConnector{
		name:     name,
		topics:   topics,
		minStars: minStars,
		window:   window,
		perTopic: 5,
		client:   client,
		nowFunc:  time.Now,
	}
}

// SetNowFunc sets a custom time function for testing.
func (c *SearchConnector) SetNowFunc(fn func() time.Time) {
	c.nowFunc = fn
}

// Name returns the source's configured name.
func (c *SearchConnector) Name() string {
	return c.name
}

// Fetch searches each topic for new starred repositories.
func (c *SearchConnector) Fetch(ctx context.Context) ([]Record, error) {
	since := c.nowFunc().Add(-c.window).Format("2006-01-02")

	var records []Record
	var failures []error
	for _, topic := range c.topics {
		query := fmt.Sprintf("topic:%s created:>=%s", topic, since)
		repos, err := c.client.SearchRepositories(ctx, query, c.perTopic)
		if err != nil {
			logger.Warn("skipping topic %s: %v", topic, err)
			failures = append(failures, fmt.Errorf("%s: %w", topic, err))
			continue
		}

		for _, repo := range repos {
			if repo.Stars < c.minStars {
				continue
			}
			description := repo.Description
			if description == "" {
				description = "No description available"
			}
			records = append(records, Record{
				Source:      c.name,
				Title:       repo.FullName,
				URL:         repo.HTMLURL,
				Engagement:  repo.Stars,
				PublishedAt: repo.CreatedAt,
				Body:        description,
			})
		}
	}

	if len(failures) == len(c.topics) && len(c.topics) > 0 {
		return nil, fmt.Errorf("%w: all topics failed: %v", ErrFetchFailed, errors.Join(failures...))
	}

	return records, nil
}
