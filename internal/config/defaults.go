package config

const (
	defaultConfigPath              = "~/.config/lectio/config.toml"
	defaultDataDir                 = "~/.local/share/lectio"
	defaultLogDir                  = "~/.local/share/lectio/logs"
	defaultAPIBind                 = "127.0.0.1:7490"
	defaultFeedURL                 = "https://bible.usccb.org/readings.rss"
	defaultFeedTimeoutSeconds      = 15
	defaultFeedUserAgent           = "Lectio/dev"
	defaultScriptureBaseURL        = "https://api.scripture.api.bible/v1"
	defaultScriptureBibleID        = "de4e12af7f28f599-02"
	defaultScriptureTimeoutSeconds = 15
	defaultScriptureMaxConcurrency = 8
	defaultScriptureRetryAttempts  = 1
	maxScriptureConcurrency        = 20
	defaultImageBaseURL            = "https://api.openai.com/v1/images/generations"
	defaultImageModel              = "dall-e-3"
	defaultImageSize               = "1024x1024"
	defaultImageStyle              = "devotional oil painting"
	defaultImageTimeoutSeconds     = 90
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			CacheDir: defaultCacheDir(),
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Feed: Feed{
			URL:            defaultFeedURL,
			TimeoutSeconds: defaultFeedTimeoutSeconds,
			UserAgent:      defaultFeedUserAgent,
		},
		Scripture: Scripture{
			BaseURL:        defaultScriptureBaseURL,
			BibleID:        defaultScriptureBibleID,
			TimeoutSeconds: defaultScriptureTimeoutSeconds,
			MaxConcurrency: defaultScriptureMaxConcurrency,
			RetryAttempts:  defaultScriptureRetryAttempts,
		},
		Image: Image{
			Enabled:        true,
			BaseURL:        defaultImageBaseURL,
			Model:          defaultImageModel,
			Size:           defaultImageSize,
			Style:          defaultImageStyle,
			TimeoutSeconds: defaultImageTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
