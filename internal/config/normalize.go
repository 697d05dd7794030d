package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFeed()
	c.normalizeScripture()
	c.normalizeImage()
	if err := c.normalizeSaints(); err != nil {
		return err
	}
	c.normalizeCache()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeSaints() error {
	c.Saints.File = strings.TrimSpace(c.Saints.File)
	if c.Saints.File == "" {
		return nil
	}
	var err error
	if c.Saints.File, err = expandPath(c.Saints.File); err != nil {
		return fmt.Errorf("saints.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeFeed() {
	c.Feed.URL = strings.TrimSpace(c.Feed.URL)
	if c.Feed.URL == "" {
		c.Feed.URL = defaultFeedURL
	}
	if c.Feed.TimeoutSeconds <= 0 {
		c.Feed.TimeoutSeconds = defaultFeedTimeoutSeconds
	}
	c.Feed.UserAgent = strings.TrimSpace(c.Feed.UserAgent)
	if c.Feed.UserAgent == "" {
		c.Feed.UserAgent = defaultFeedUserAgent
	}
}

func (c *Config) normalizeScripture() {
	c.Scripture.APIKey = strings.TrimSpace(c.Scripture.APIKey)
	if c.Scripture.APIKey == "" {
		if value, ok := os.LookupEnv("SCRIPTURE_API_KEY"); ok {
			c.Scripture.APIKey = strings.TrimSpace(value)
		}
	}
	c.Scripture.BaseURL = strings.TrimRight(strings.TrimSpace(c.Scripture.BaseURL), "/")
	if c.Scripture.BaseURL == "" {
		c.Scripture.BaseURL = defaultScriptureBaseURL
	}
	c.Scripture.BibleID = strings.TrimSpace(c.Scripture.BibleID)
	if c.Scripture.BibleID == "" {
		c.Scripture.BibleID = defaultScriptureBibleID
	}
	if c.Scripture.TimeoutSeconds <= 0 {
		c.Scripture.TimeoutSeconds = defaultScriptureTimeoutSeconds
	}
	if c.Scripture.MaxConcurrency <= 0 {
		c.Scripture.MaxConcurrency = defaultScriptureMaxConcurrency
	}
	if c.Scripture.MaxConcurrency > maxScriptureConcurrency {
		c.Scripture.MaxConcurrency = maxScriptureConcurrency
	}
	if c.Scripture.RetryAttempts <= 0 {
		c.Scripture.RetryAttempts = defaultScriptureRetryAttempts
	}
}

func (c *Config) normalizeImage() {
	c.Image.APIKey = strings.TrimSpace(c.Image.APIKey)
	if c.Image.APIKey == "" {
		if value, ok := os.LookupEnv("IMAGE_API_KEY"); ok {
			c.Image.APIKey = strings.TrimSpace(value)
		}
	}
	c.Image.BaseURL = strings.TrimSpace(c.Image.BaseURL)
	if c.Image.BaseURL == "" {
		c.Image.BaseURL = defaultImageBaseURL
	}
	c.Image.Model = strings.TrimSpace(c.Image.Model)
	if c.Image.Model == "" {
		c.Image.Model = defaultImageModel
	}
	c.Image.Size = strings.ToLower(strings.TrimSpace(c.Image.Size))
	if c.Image.Size == "" {
		c.Image.Size = defaultImageSize
	}
	c.Image.Style = strings.TrimSpace(c.Image.Style)
	if c.Image.Style == "" {
		c.Image.Style = defaultImageStyle
	}
	if c.Image.TimeoutSeconds <= 0 {
		c.Image.TimeoutSeconds = defaultImageTimeoutSeconds
	}
}

func (c *Config) normalizeCache() {
	if c.Cache.ScriptureMaxEntries < 0 {
		c.Cache.ScriptureMaxEntries = 0
	}
	if c.Cache.ImageMemoryMaxEntries < 0 {
		c.Cache.ImageMemoryMaxEntries = 0
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
