// Package feed fetches the daily liturgical readings RSS feed.
package feed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"lectio/internal/services"
	"lectio/internal/services/httpretry"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "lectio/1.0"
)

var itemsExpr = xpath.MustCompile("//item")

var pubDateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	time.RFC3339,
}

// Item is one RSS entry: a day's readings.
type Item struct {
	Title       string
	Description string
	Link        string
	PubDate     time.Time
}

// Config controls the feed client.
type Config struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// Client downloads and parses the feed.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      httpretry.Policy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(policy httpretry.Policy) Option {
	return func(c *Client) {
		c.retry = policy
	}
}

// NewClient constructs a feed client.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = defaultUserAgent
	}
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retry:      httpretry.SingleAttempt(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Fetch downloads the feed and returns its items in document order.
func (c *Client) Fetch(ctx context.Context) ([]Item, error) {
	if c == nil {
		return nil, errors.New("feed client unavailable")
	}
	if strings.TrimSpace(c.cfg.URL) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "feed", "fetch", "feed url not configured", nil)
	}

	var body []byte
	err := c.retry.Do(ctx, "feed fetch", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("User-Agent", c.cfg.UserAgent)
		req.Header.Set("Accept", "application/rss+xml, application/xml;q=0.9, */*;q=0.5")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err = httpretry.CheckResponse("feed fetch", resp, services.ErrFetchFailure)
		return err
	})
	if err != nil {
		if errors.Is(err, services.ErrFetchFailure) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, services.Wrap(services.ErrFetchFailure, "feed", "fetch", "request failed", err)
	}
	return Parse(body)
}

// TodayItem fetches the feed and selects the entry for date.
func (c *Client) TodayItem(ctx context.Context, date time.Time) (Item, error) {
	items, err := c.Fetch(ctx)
	if err != nil {
		return Item{}, err
	}
	item, ok := SelectForDate(items, date)
	if !ok {
		return Item{}, services.Wrap(services.ErrFetchFailure, "feed", "select", "feed carried no items", nil)
	}
	return item, nil
}

// Parse extracts the RSS items from a feed document.
func Parse(data []byte) ([]Item, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, services.Wrap(services.ErrFetchFailure, "feed", "parse", "malformed feed document", err)
	}
	nodes := xmlquery.QuerySelectorAll(doc, itemsExpr)
	items := make([]Item, 0, len(nodes))
	for _, node := range nodes {
		item := Item{
			Title:       childText(node, "title"),
			Description: childText(node, "description"),
			Link:        childText(node, "link"),
		}
		item.PubDate, _ = parsePubDate(childText(node, "pubDate"))
		items = append(items, item)
	}
	return items, nil
}

// SelectForDate returns the item published on date's calendar day, else the
// most recent item.
func SelectForDate(items []Item, date time.Time) (Item, bool) {
	if len(items) == 0 {
		return Item{}, false
	}
	year, month, day := date.Date()
	for _, item := range items {
		if item.PubDate.IsZero() {
			continue
		}
		y, m, d := item.PubDate.In(date.Location()).Date()
		if y == year && m == month && d == day {
			return item, true
		}
	}
	sorted := append([]Item(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PubDate.After(sorted[j].PubDate)
	})
	return sorted[0], true
}

func childText(node *xmlquery.Node, name string) string {
	child := node.SelectElement(name)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.InnerText())
}

func parsePubDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range pubDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
