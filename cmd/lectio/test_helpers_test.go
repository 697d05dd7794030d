package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"lectio/internal/config"
	"lectio/internal/testsupport"
)

const cliFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
<item>
  <title>Memorial of Saint Ignatius of Antioch</title>
  <link>https://example.org/readings</link>
  <pubDate>Sat, 17 Oct 2026 05:00:00 +0000</pubDate>
  <description><![CDATA[<strong>Reading 1</strong><br/>Romans 4:13-18<br/>Abraham believed, hoping against hope.<strong>Gospel</strong><br/>Luke 12:8-12<br/>The Holy Spirit will teach you at that moment what you should say.]]></description>
</item>
</channel></rss>`

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	feedServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(cliFeed))
	}))
	t.Cleanup(feedServer.Close)

	bibleServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		payload := map[string]any{"data": map[string]any{"id": id, "content": "<p>Verse " + id + "</p>"}}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(bibleServer.Close)

	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t,
		testsupport.WithFeedURL(feedServer.URL),
		testsupport.WithScriptureProvider(bibleServer.URL, "secret"),
	)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeJSON(t *testing.T, data string, target any) {
	t.Helper()
	if err := json.Unmarshal([]byte(data), target); err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
