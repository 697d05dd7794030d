package bibleapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lectio/internal/services"
	"lectio/internal/services/httpretry"
)

func quickRetry(attempts int) Option {
	return WithRetryPolicy(httpretry.Policy{MaxAttempts: attempts, Sleeper: func(time.Duration) {}})
}

func TestFetchVerse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bibles/test-bible/verses/JHN.3.16" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("api-key") != "secret" {
			t.Errorf("expected api-key header, got %q", r.Header.Get("api-key"))
		}
		if r.URL.Query().Get("content-type") != "text" {
			t.Errorf("expected text content type")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"id":        "JHN.3.16",
				"reference": "John 3:16",
				"content":   `<p class="p">[16] For God so loved the world&nbsp;that he gave his only Son.</p>`,
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: server.URL, BibleID: "test-bible"})
	verse, err := client.FetchVerse(context.Background(), "JHN", 3, 16)
	if err != nil {
		t.Fatalf("FetchVerse returned error: %v", err)
	}
	if verse.Text != "For God so loved the world that he gave his only Son." {
		t.Fatalf("unexpected text %q", verse.Text)
	}
	if verse.BookName != "John" || verse.Chapter != 3 || verse.VerseNumber != 16 {
		t.Fatalf("unexpected verse %+v", verse)
	}
	if verse.Reference != "John 3:16" {
		t.Fatalf("unexpected reference %q", verse.Reference)
	}
}

func TestFetchVerseTextStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"bad key"}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, BibleID: "b"}, quickRetry(3))
	_, err := client.FetchVerseText(context.Background(), "", "JHN.3.16")
	var statusErr *httpretry.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
	if !errors.Is(err, services.ErrFetchFailure) {
		t.Fatalf("expected fetch failure marker, got %v", err)
	}
}

func TestFetchVerseRetriesRateLimit(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"content": "Jesus wept."}})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, BibleID: "b"}, quickRetry(3))
	verse, err := client.FetchVerse(context.Background(), "JHN", 11, 35)
	if err != nil {
		t.Fatalf("FetchVerse returned error: %v", err)
	}
	if calls != 2 || verse.Text != "Jesus wept." {
		t.Fatalf("expected retry then success, got %d calls, %q", calls, verse.Text)
	}
}

func TestFetchVerseEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"content": "  "}})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, BibleID: "b"})
	if _, err := client.FetchVerse(context.Background(), "GEN", 1, 1); !errors.Is(err, services.ErrFetchFailure) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
}

func TestMissingAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.FetchVerseText(context.Background(), "b", "JHN.1.1"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bibles/b/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "shepherd" || r.URL.Query().Get("limit") != "5" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"query": "shepherd",
				"total": 2,
				"verses": []any{
					map[string]any{"id": "PSA.23.1", "reference": "Psalms 23:1", "text": "The LORD is my shepherd; there is nothing I lack."},
					map[string]any{"id": "bogus", "text": "skipped"},
					map[string]any{"id": "JHN.10.11", "reference": "John 10:11", "text": "I am the good shepherd."},
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, BibleID: "b"})
	hits, err := client.Search(context.Background(), "", "shepherd", 5)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Reference.Book != "Psalms" || hits[0].Reference.Chapter != 23 {
		t.Fatalf("unexpected first hit %+v", hits[0].Reference)
	}
	if hits[1].Reference.DisplayText() != "John 10:11" {
		t.Fatalf("unexpected second hit %q", hits[1].Reference.DisplayText())
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client := NewClient(Config{APIKey: "k"})
	hits, err := client.Search(context.Background(), "b", "  ", 5)
	if err != nil || hits != nil {
		t.Fatalf("expected no hits and no error, got %v %v", hits, err)
	}
}

func TestFetchVerseDoesNotRetryByDefault(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, BibleID: "b"})
	if _, err := client.FetchVerse(context.Background(), "JHN", 3, 16); !errors.Is(err, services.ErrFetchFailure) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single request, got %d", calls)
	}

	calls = 0
	client = NewClient(Config{APIKey: "k", BaseURL: server.URL, BibleID: "b"}, quickRetry(2))
	_, _ = client.FetchVerse(context.Background(), "JHN", 3, 16)
	if calls != 2 {
		t.Fatalf("expected opt-in retry to make 2 requests, got %d", calls)
	}
}
