package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lectio/internal/services"
	"lectio/internal/services/httpretry"
)

func TestGenerate(t *testing.T) {
	want := []byte{0xff, 0xd8, 0xff, 0xe0, 'j', 'p', 'g'}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "demo" || req.N != 1 || req.ResponseFormat != "b64_json" || req.Size != "512x512" {
			t.Errorf("unexpected request %+v", req)
		}
		if req.Prompt != "A shepherd at dawn" {
			t.Errorf("unexpected prompt %q", req.Prompt)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"b64_json": base64.StdEncoding.EncodeToString(want)}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL, Model: "demo", Size: "512x512"})
	got, err := client.Generate(context.Background(), "A shepherd at dawn")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("unexpected image bytes %v", got)
	}
}

func TestGenerateStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"content policy"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "prompt")
	var statusErr *httpretry.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 StatusError, got %v", err)
	}
	if !errors.Is(err, services.ErrGenerationFailure) {
		t.Fatalf("expected generation failure marker, got %v", err)
	}
}

func TestGenerateRetriesAfterHeader(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "4")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"b64_json": base64.StdEncoding.EncodeToString([]byte("img"))}},
		})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "key", BaseURL: server.URL},
		WithRetryPolicy(httpretry.Policy{MaxAttempts: 3, MaxDelay: 10 * time.Second, Sleeper: func(d time.Duration) { slept = append(slept, d) }}),
	)
	if _, err := client.Generate(context.Background(), "prompt"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if calls != 2 || len(slept) != 1 || slept[0] != 4*time.Second {
		t.Fatalf("expected one 4s retry, got calls=%d slept=%v", calls, slept)
	}
}

func TestGenerateUnparseablePayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"no data", `{"data":[]}`},
		{"bad base64", `{"data":[{"b64_json":"!!!"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
			if _, err := client.Generate(context.Background(), "prompt"); !errors.Is(err, services.ErrGenerationFailure) {
				t.Fatalf("expected generation failure, got %v", err)
			}
		})
	}
}

func TestGenerateRequiresKey(t *testing.T) {
	client := NewClient(Config{})
	if _, err := client.Generate(context.Background(), "prompt"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
