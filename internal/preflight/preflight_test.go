package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectio/internal/config"
)

const sampleFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Readings</title>
<item><title>Saturday of the Twenty-eighth Week</title><description>text</description><pubDate>Sat, 17 Oct 2026 00:00:00 +0000</pubDate></item>
</channel></rss>`

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Data", dir)
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
	if !strings.Contains(result.Detail, "read/write ok") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("Data", filepath.Join(t.TempDir(), "missing"))
	if result.Passed {
		t.Fatal("expected failure for missing directory")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	result := CheckDirectoryAccess("Data", file)
	if result.Passed || !strings.Contains(result.Detail, "not a directory") {
		t.Fatalf("expected not-a-directory failure, got %+v", result)
	}
}

func TestCheckDirectoryAccess_Empty(t *testing.T) {
	if result := CheckDirectoryAccess("Data", "  "); result.Passed || result.Detail != "not configured" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCheckFreeSpace(t *testing.T) {
	orig := statfs
	t.Cleanup(func() { statfs = orig })

	tests := []struct {
		name   string
		avail  uint64
		err    error
		passed bool
		detail string
	}{
		{name: "plenty", avail: 2 << 30, passed: true, detail: "free of"},
		{name: "low", avail: 1 << 20, detail: "need at least"},
		{name: "error", err: errors.New("boom"), detail: "statfs: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			statfs = func(string) (uint64, uint64, error) {
				return 4 << 30, tt.avail, tt.err
			}
			result := CheckFreeSpace("Cache", "/cache", 100<<20)
			if result.Passed != tt.passed {
				t.Fatalf("passed = %v, want %v (%s)", result.Passed, tt.passed, result.Detail)
			}
			if !strings.Contains(result.Detail, tt.detail) {
				t.Fatalf("detail %q missing %q", result.Detail, tt.detail)
			}
		})
	}
}

func TestCheckFreeSpaceRealFilesystem(t *testing.T) {
	result := CheckFreeSpace("Cache", t.TempDir(), 1)
	if !result.Passed {
		t.Fatalf("expected temp dir to have space, got %+v", result)
	}
}

func TestCheckArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	result := CheckArchive(context.Background(), path)
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
	if result.Detail != "0 days, 0 artworks" {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckFeed_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "lectio-test" {
			t.Errorf("user agent = %q", got)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, sampleFeed)
	}))
	defer server.Close()

	result := CheckFeed(context.Background(), server.URL, "lectio-test")
	if !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
	if result.Detail != "reachable (1 items)" {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckFeed_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	if result := CheckFeed(context.Background(), server.URL, ""); result.Passed {
		t.Fatalf("expected failure, got %+v", result)
	}
	if result := CheckFeed(context.Background(), "", ""); result.Passed || result.Detail != "missing url" {
		t.Fatalf("unexpected result for empty url %+v", result)
	}
}

func TestCheckScriptureProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if !strings.HasSuffix(r.URL.Path, "/verses/JHN.3.16") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"data":{"id":"JHN.3.16","reference":"John 3:16","content":"For God so loved the world"}}`)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Scripture.BaseURL = server.URL
	cfg.Scripture.BibleID = "test-bible"

	cfg.Scripture.APIKey = ""
	if result := CheckScriptureProvider(context.Background(), &cfg); result.Passed || result.Detail != "API key missing" {
		t.Fatalf("unexpected result without key %+v", result)
	}

	cfg.Scripture.APIKey = "bad"
	if result := CheckScriptureProvider(context.Background(), &cfg); result.Passed || !strings.Contains(result.Detail, "auth failed") {
		t.Fatalf("expected auth failure, got %+v", result)
	}

	cfg.Scripture.APIKey = "good"
	if result := CheckScriptureProvider(context.Background(), &cfg); !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestCheckImageProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Image.Enabled = false
	if result := CheckImageProvider(&cfg); !result.Passed || !strings.HasPrefix(result.Detail, "Disabled") {
		t.Fatalf("unexpected disabled result %+v", result)
	}

	cfg.Image.Enabled = true
	cfg.Image.APIKey = ""
	if result := CheckImageProvider(&cfg); result.Passed {
		t.Fatalf("expected failure without key, got %+v", result)
	}

	cfg.Image.APIKey = "key"
	cfg.Image.Size = "huge"
	if result := CheckImageProvider(&cfg); result.Passed {
		t.Fatalf("expected failure for bad size, got %+v", result)
	}

	cfg.Image.Size = "1024x1024"
	if result := CheckImageProvider(&cfg); !result.Passed {
		t.Fatalf("expected pass, got %+v", result)
	}
}

func TestRunAllAndFailed(t *testing.T) {
	if RunAll(context.Background(), nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
	results := []Result{{Name: "a", Passed: true}, {Name: "b", Passed: true}}
	if Failed(results) {
		t.Fatal("expected no failures")
	}
	results = append(results, Result{Name: "c"})
	if !Failed(results) {
		t.Fatal("expected failure")
	}
}
