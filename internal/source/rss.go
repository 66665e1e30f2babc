package source

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSConnector fetches discussion records from an RSS or Atom feed.
type RSSConnector struct {
	name string
	url  string
	// timeout bounds the feed fetch independent of the caller's context
	timeout time.Duration
}

// NewRSSConnector creates a connector for a feed URL.
func NewRSSConnector(name, feedURL string, timeout time.Duration) *RSSConnector {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RSSConnector{
		name:    name,
		url:     feedURL,
		timeout: timeout,
	}
}

// Name returns the source's configured name.
func (c *RSSConnector) Name() string {
	return c.name
}

// Fetch parses the feed and returns one record per item.
func (c *RSSConnector) Fetch(ctx context.Context) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	parser := gofeed.NewParser()
	parser.UserAgent = defaultUserAgent

	feed, err := parser.ParseURLWithContext(c.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	records := make([]Record, 0, len(feed.Items))
	for _, item := range feed.Items {
		published := time.Time{}
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			published = item.UpdatedParsed.UTC()
		}

		body := item.Description
		if body == "" {
			body = item.Content
		}

		records = append(records, Record{
			Source:      c.name,
			Title:       item.Title,
			URL:         item.Link,
			Engagement:  len(item.Categories), // feeds carry no vote counts
			PublishedAt: published,
			Body:        body,
		})
	}

	return records, nil
}
