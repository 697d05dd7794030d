// Package bibleapi is the scripture text provider client.
package bibleapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lectio/internal/extract"
	"lectio/internal/scripture"
	"lectio/internal/services"
	"lectio/internal/services/httpretry"
)

const (
	defaultBaseURL = "https://api.scripture.api.bible/v1"
	defaultTimeout = 15 * time.Second
	defaultLimit   = 10
)

var verseMarker = regexp.MustCompile(`^\s*\[\d+\]\s*`)

// Config describes how to reach the provider.
type Config struct {
	APIKey  string
	BaseURL string
	BibleID string
	Timeout time.Duration
}

// SearchHit is one verse returned by provider search.
type SearchHit struct {
	ID        string
	Reference scripture.Reference
	Text      string
}

// Client wraps the provider's REST API.
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

// WithRetryAttempts sets the maximum attempts per request.
func WithRetryAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retry.MaxAttempts = attempts
		}
	}
}

// NewClient constructs a provider client.
func NewClient(cfg Config, opts ...Option) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = defaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
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

type verseResponse struct {
	Data struct {
		ID        string `json:"id"`
		Reference string `json:"reference"`
		Content   string `json:"content"`
	} `json:"data"`
}

type searchResponse struct {
	Data struct {
		Query  string `json:"query"`
		Total  int    `json:"total"`
		Verses []struct {
			ID        string `json:"id"`
			Reference string `json:"reference"`
			Text      string `json:"text"`
		} `json:"verses"`
	} `json:"data"`
}

// FetchVerseText returns the raw content of one verse (or verse range) in the
// given translation. apiRef uses provider notation, for example "JHN.3.16".
func (c *Client) FetchVerseText(ctx context.Context, bibleID, apiRef string) (string, error) {
	if strings.TrimSpace(apiRef) == "" {
		return "", services.Wrap(services.ErrInvalidReference, "bibleapi", "fetch verse", "empty reference", nil)
	}
	endpoint := fmt.Sprintf("%s/bibles/%s/verses/%s", c.cfg.BaseURL, url.PathEscape(c.bible(bibleID)), url.PathEscape(apiRef))
	query := url.Values{}
	query.Set("content-type", "text")
	query.Set("include-notes", "false")
	query.Set("include-titles", "false")
	query.Set("include-verse-numbers", "false")

	var payload verseResponse
	if err := c.getJSON(ctx, "fetch verse "+apiRef, endpoint+"?"+query.Encode(), &payload); err != nil {
		return "", err
	}
	return payload.Data.Content, nil
}

// FetchVerse fetches a single verse and returns it with HTML removed.
func (c *Client) FetchVerse(ctx context.Context, bookCode string, chapter, verse int) (scripture.Verse, error) {
	apiRef := fmt.Sprintf("%s.%d.%d", strings.ToUpper(strings.TrimSpace(bookCode)), chapter, verse)
	raw, err := c.FetchVerseText(ctx, c.cfg.BibleID, apiRef)
	if err != nil {
		return scripture.Verse{}, err
	}
	text, _ := extract.CleanHTML(raw)
	text = verseMarker.ReplaceAllString(text, "")
	if text == "" {
		return scripture.Verse{}, services.Wrap(services.ErrFetchFailure, "bibleapi", "fetch verse", "empty content for "+apiRef, nil)
	}
	book := scripture.BookName(bookCode)
	return scripture.Verse{
		Text:        text,
		Reference:   fmt.Sprintf("%s %d:%d", book, chapter, verse),
		BookName:    book,
		Chapter:     chapter,
		VerseNumber: verse,
	}, nil
}

// Search runs a provider-side keyword search.
func (c *Client) Search(ctx context.Context, bibleID, query string, limit int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/bibles/%s/search?%s", c.cfg.BaseURL, url.PathEscape(c.bible(bibleID)), params.Encode())

	var payload searchResponse
	if err := c.getJSON(ctx, "search", endpoint, &payload); err != nil {
		return nil, err
	}
	hits := make([]SearchHit, 0, len(payload.Data.Verses))
	for _, v := range payload.Data.Verses {
		ref, err := scripture.ParseAPIRange(v.ID)
		if err != nil {
			continue
		}
		text, _ := extract.CleanHTML(v.Text)
		hits = append(hits, SearchHit{ID: v.ID, Reference: ref, Text: text})
	}
	return hits, nil
}

func (c *Client) bible(id string) string {
	if strings.TrimSpace(id) != "" {
		return id
	}
	return c.cfg.BibleID
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, target any) error {
	if c == nil {
		return errors.New("bibleapi client unavailable")
	}
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return services.Wrap(services.ErrConfiguration, "bibleapi", op, "api key not configured", nil)
	}
	err := c.retry.Do(ctx, op, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("api-key", c.cfg.APIKey)
		req.Header.Set("Accept", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err := httpretry.CheckResponse(op, resp, services.ErrFetchFailure)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, target); err != nil {
			return services.Wrap(services.ErrFetchFailure, "bibleapi", op, "decode response", err)
		}
		return nil
	})
	if err == nil || errors.Is(err, services.ErrFetchFailure) || errors.Is(err, context.Canceled) {
		return err
	}
	return services.Wrap(services.ErrFetchFailure, "bibleapi", op, "request failed", err)
}
