package testsupport

import (
	"path/filepath"
	"testing"

	"lectio/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Provider keys are set to "test" and every URL points at an unroutable
// address until an option overrides it.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Feed.URL = "http://127.0.0.1:1/readings.rss"
	cfgVal.Scripture.APIKey = "test"
	cfgVal.Scripture.BaseURL = "http://127.0.0.1:1/v1"
	cfgVal.Scripture.RetryAttempts = 1
	cfgVal.Image.Enabled = false
	cfgVal.Image.APIKey = "test"
	cfgVal.Image.BaseURL = "http://127.0.0.1:1/images"
	cfgVal.Image.Size = "64x64"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFeedURL points the feed client at url, typically an httptest server.
func WithFeedURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Feed.URL = url
	}
}

// WithScriptureProvider points the scripture client at baseURL.
func WithScriptureProvider(baseURL, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scripture.BaseURL = baseURL
		b.cfg.Scripture.APIKey = apiKey
	}
}

// WithImageProvider enables generation against url.
func WithImageProvider(url, apiKey string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Image.Enabled = true
		b.cfg.Image.BaseURL = url
		b.cfg.Image.APIKey = apiKey
	}
}

// WithCacheBounds sets the in-memory cache limits.
func WithCacheBounds(scripture, images int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.ScriptureMaxEntries = scripture
		b.cfg.Cache.ImageMemoryMaxEntries = images
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
