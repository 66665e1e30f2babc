package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// RedditConnector fetches hot posts from a subreddit's public JSON listing.
type RedditConnector struct {
	name      string
	subreddit string
	client    *Client
	baseURL   string
	limit     int
	token     string
}

// NewRedditConnector creates a connector for the named subreddit.
// The token is optional; the public listing works unauthenticated.
func NewRedditConnector(name, subreddit, token string, client *Client) *RedditConnector {
	return &RedditConnector{
		name:      name,
		subreddit: subreddit,
		client:    client,
		baseURL:   "https://www.reddit.com",
		limit:     25,
		token:     token,
	}
}

// SetBaseURL overrides the endpoint, used by tests.
func (c *RedditConnector) SetBaseURL(base string) {
	c.baseURL = base
}

// Name returns the source's configured name.
func (c *RedditConnector) Name() string {
	return c.name
}

// Fetch returns the subreddit's current hot posts as records.
func (c *RedditConnector) Fetch(ctx context.Context) ([]Record, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot.json?limit=%d", c.baseURL, c.subreddit, c.limit)

	headers := map[string]string{}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}

	body, err := c.client.GetBody(ctx, endpoint, headers)
	if err != nil {
		return nil, err
	}

	var listing struct {
		Data struct {
			Children []struct {
				Data struct {
					Title     string  `json:"title"`
					Permalink string  `json:"permalink"`
					Score     int     `json:"score"`
					Selftext  string  `json:"selftext"`
					CreatedAt float64 `json:"created_utc"`
					Stickied  bool    `json:"stickied"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	records := make([]Record, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		post := child.Data
		if post.Stickied {
			continue
		}
		records = append(records, Record{
			Source:      c.name,
			Title:       post.Title,
			URL:         "https://www.reddit.com" + post.Permalink,
			Engagement:  post.Score,
			PublishedAt: time.Unix(int64(post.CreatedAt), 0).UTC(),
			Body:        post.Selftext,
		})
	}

	return records, nil
}
