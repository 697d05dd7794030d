package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	DataDir  string `toml:"data_dir"`
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
}

// Feed contains configuration for the daily readings RSS feed.
type Feed struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Scripture contains configuration for the scripture text provider.
type Scripture struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	BibleID        string `toml:"bible_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxConcurrency int    `toml:"max_concurrency"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// Image contains configuration for the devotional artwork provider.
type Image struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Size           string `toml:"size"`
	Style          string `toml:"style"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Saints selects the saints calendar. An empty File uses the built-in table.
type Saints struct {
	File string `toml:"file"`
}

// Cache contains in-memory cache bounds. Zero means unbounded.
type Cache struct {
	ScriptureMaxEntries   int `toml:"scripture_max_entries"`
	ImageMemoryMaxEntries int `toml:"image_memory_max_entries"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Lectio.
//
// Configuration sections by subsystem:
//   - Paths: data, cache and log directories plus the API bind address
//   - Feed: daily readings RSS source
//   - Scripture: verse text provider credentials and fan-out limits
//   - Image: artwork generation provider
//   - Saints: optional replacement saints calendar
//   - Cache: optional LRU bounds for the in-memory caches
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Feed      Feed      `toml:"feed"`
	Scripture Scripture `toml:"scripture"`
	Image     Image     `toml:"image"`
	Saints    Saints    `toml:"saints"`
	Cache     Cache     `toml:"cache"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path of the per-user config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads the TOML file at path, or the first existing candidate when path
// is empty, over the built-in defaults. It reports the path it settled on and
// whether that file existed. Unknown keys are rejected so typos surface early.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(path)
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	dec := toml.NewDecoder(file)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse config %s: unknown keys:\n%s", path, strict.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return fmt.Errorf("parse config %s:%d:%d: %w", path, row, col, err)
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// locate returns the config file to read. An explicit path is used as-is even
// when missing; otherwise the per-user file wins over ./lectio.toml.
func locate(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		return expanded, exists, err
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		exists, err := isFile(candidate)
		if err != nil {
			return "", false, err
		}
		if exists {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return false, fmt.Errorf("config path %s is a directory", path)
	}
	return true, nil
}

// CreateSample writes the commented sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
