package source

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DiscourseConnector scrapes a Discourse forum's /latest page for topics.
// Discourse instances expose a JSON API, but several of the communities this
// tool monitors restrict it, so the HTML listing is the common denominator.
type DiscourseConnector struct {
	name   string
	url    string
	client *Client
}

// NewDiscourseConnector creates a connector for a forum's latest-topics URL.
func NewDiscourseConnector(name, endpoint string, client *Client) *DiscourseConnector {
	return &DiscourseConnector{
		name:   name,
		url:    endpoint,
		client: client,
	}
}

// Name returns the source's configured name.
func (c *DiscourseConnector) Name() string {
	return c.name
}

// Fetch scrapes the topic list and returns one record per topic.
func (c *DiscourseConnector) Fetch(ctx context.Context) ([]Record, error) {
	body, err := c.client.GetBody(ctx, c.url, nil)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	base, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	var records []Record
	doc.Find("tr.topic-list-item").Each(func(_ int, row *goquery.Selection) {
		link := row.Find("a.title").First()
		title := strings.TrimSpace(link.Text())
		href, ok := link.Attr("href")
		if title == "" || !ok {
			return
		}

		resolved := href
		if parsed, err := url.Parse(href); err == nil {
			resolved = base.ResolveReference(parsed).String()
		}

		records = append(records, Record{
			Source:      c.name,
			Title:       title,
			URL:         resolved,
			Engagement:  topicReplies(row),
			PublishedAt: topicActivity(row),
			Body:        strings.TrimSpace(row.Find(".topic-excerpt").Text()),
		})
	})

	if records == nil {
		// An empty listing usually means the markup changed underneath us
		return nil, fmt.Errorf("%w: no topics found at %s", ErrParseFailed, c.url)
	}

	return records, nil
}

// topicReplies extracts the reply count from a topic row.
func topicReplies(row *goquery.Selection) int {
	text := strings.TrimSpace(row.Find("td.replies .number, td.posts .number").First().Text())
	if text == "" {
		return 0
	}
	// Discourse renders "1.2k" for large counts
	multiplier := 1
	if strings.HasSuffix(text, "k") {
		multiplier = 1000
		text = strings.TrimSuffix(text, "k")
	}
	n, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0
	}
	return int(n * float64(multiplier))
}

// topicActivity extracts the last-activity timestamp from a topic row.
// Discourse encodes the epoch milliseconds in a data attribute; rows
// without it get the zero time and fall outside any ranking window.
func topicActivity(row *goquery.Selection) time.Time {
	raw, ok := row.Find(".relative-date").First().Attr("data-time")
	if !ok {
		return time.Time{}
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
