package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	projectConfigName = "lectio.toml"
	archiveFileName   = "lectio.db"
	lockFileName      = "lectio.lock"
)

// ArchivePath is the SQLite database holding archived days and artwork.
func (c *Config) ArchivePath() string { return filepath.Join(c.Paths.DataDir, archiveFileName) }

// ImageCacheDir holds generated artwork, sharded by key prefix.
func (c *Config) ImageCacheDir() string { return filepath.Join(c.Paths.CacheDir, "images") }

// LockPath guards against two servers sharing one data directory.
func (c *Config) LockPath() string { return filepath.Join(c.Paths.DataDir, lockFileName) }

func (c *Config) FeedTimeout() time.Duration { return seconds(c.Feed.TimeoutSeconds) }

func (c *Config) ScriptureTimeout() time.Duration { return seconds(c.Scripture.TimeoutSeconds) }

func (c *Config) ImageTimeout() time.Duration { return seconds(c.Image.TimeoutSeconds) }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// EnsureDirectories creates every configured directory, skipping blanks.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.CacheDir, c.Paths.LogDir, c.ImageCacheDir()} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// ExpandPath resolves a leading "~" and returns an absolute, cleaned path.
// The empty string is returned unchanged.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || os.IsPathSeparator(rest[0])) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = home + rest
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}
	return abs, nil
}

func defaultCacheDir() string {
	if base := strings.TrimSpace(os.Getenv("XDG_CACHE_HOME")); base != "" {
		return filepath.Join(base, "lectio")
	}
	return "~/.cache/lectio"
}
