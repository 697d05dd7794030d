package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable. Provider credentials are
// optional here; missing keys are reported by preflight.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	if err := c.validateScripture(); err != nil {
		return err
	}
	if err := c.validateImage(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		return errors.New("paths.cache_dir must be set")
	}
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: %w", err)
	}
	return nil
}

func (c *Config) validateFeed() error {
	if err := validateURL("feed.url", c.Feed.URL); err != nil {
		return err
	}
	return ensurePositiveMap(map[string]int{
		"feed.timeout_seconds": c.Feed.TimeoutSeconds,
	})
}

func (c *Config) validateScripture() error {
	if err := validateURL("scripture.base_url", c.Scripture.BaseURL); err != nil {
		return err
	}
	if c.Scripture.MaxConcurrency > maxScriptureConcurrency {
		return fmt.Errorf("scripture.max_concurrency must be at most %d", maxScriptureConcurrency)
	}
	return ensurePositiveMap(map[string]int{
		"scripture.timeout_seconds": c.Scripture.TimeoutSeconds,
		"scripture.max_concurrency": c.Scripture.MaxConcurrency,
		"scripture.retry_attempts":  c.Scripture.RetryAttempts,
	})
}

func (c *Config) validateImage() error {
	if !c.Image.Enabled {
		return nil
	}
	if err := validateURL("image.base_url", c.Image.BaseURL); err != nil {
		return err
	}
	if _, _, err := ParseImageSize(c.Image.Size); err != nil {
		return fmt.Errorf("image.size: %w", err)
	}
	return ensurePositiveMap(map[string]int{
		"image.timeout_seconds": c.Image.TimeoutSeconds,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

// ParseImageSize splits a "WIDTHxHEIGHT" size into its dimensions.
func ParseImageSize(size string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(size)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("expected WIDTHxHEIGHT, got %q", size)
	}
	width, err := strconv.Atoi(w)
	if err != nil || width <= 0 {
		return 0, 0, fmt.Errorf("invalid width in %q", size)
	}
	height, err := strconv.Atoi(h)
	if err != nil || height <= 0 {
		return 0, 0, fmt.Errorf("invalid height in %q", size)
	}
	return width, height, nil
}

func validateURL(field, value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL", field)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s must include a host", field)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
