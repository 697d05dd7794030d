package devotion

import (
	"fmt"
	"log/slog"
	"strings"

	"lectio/internal/archive"
	"lectio/internal/artwork"
	"lectio/internal/config"
	"lectio/internal/extract"
	"lectio/internal/liturgy"
	"lectio/internal/logging"
	"lectio/internal/passage"
	"lectio/internal/saints"
	"lectio/internal/scripturecache"
	"lectio/internal/services/bibleapi"
	"lectio/internal/services/feed"
	"lectio/internal/services/imagegen"
)

// Open wires a Service from configuration. The archive is optional: when it
// cannot be opened the service runs without history and logs a warning.
func Open(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("devotion: configuration is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	directory, err := loadSaints(cfg)
	if err != nil {
		return nil, fmt.Errorf("load saints directory: %w", err)
	}

	feedClient := feed.NewClient(feed.Config{
		URL:       cfg.Feed.URL,
		UserAgent: cfg.Feed.UserAgent,
		Timeout:   cfg.FeedTimeout(),
	})
	bible := bibleapi.NewClient(bibleapi.Config{
		APIKey:  cfg.Scripture.APIKey,
		BaseURL: cfg.Scripture.BaseURL,
		BibleID: cfg.Scripture.BibleID,
		Timeout: cfg.ScriptureTimeout(),
	}, bibleapi.WithRetryAttempts(cfg.Scripture.RetryAttempts))

	store, err := archive.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "archive unavailable; history disabled", "archive_unavailable",
			logging.Error(err),
			logging.String(logging.FieldImpact, "days and artwork will not be archived"),
			logging.String(logging.FieldErrorHint, "run lectio doctor to inspect the data directory"),
		)
		store = nil
	}

	assemblerOpts := []liturgy.Option{liturgy.WithSaints(directory)}
	var history History
	if store != nil {
		assemblerOpts = append(assemblerOpts, liturgy.WithStore(store))
		history = store
	}
	assembler := liturgy.NewAssembler(feedClient, extract.New(logger), logger, assemblerOpts...)

	images, err := artwork.NewCache(cfg.ImageCacheDir(), cfg.Cache.ImageMemoryMaxEntries)
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, fmt.Errorf("open image cache: %w", err)
	}

	width, height, err := config.ParseImageSize(cfg.Image.Size)
	if err != nil {
		width, height = 0, 0
	}
	var provider artwork.Provider
	if cfg.Image.Enabled && strings.TrimSpace(cfg.Image.APIKey) != "" {
		provider = imagegen.NewClient(imagegen.Config{
			APIKey:  cfg.Image.APIKey,
			BaseURL: cfg.Image.BaseURL,
			Model:   cfg.Image.Model,
			Size:    cfg.Image.Size,
			Timeout: cfg.ImageTimeout(),
		})
	}
	var genOpts []artwork.GeneratorOption
	if store != nil {
		genOpts = append(genOpts, artwork.WithGallery(store))
	}
	generator := artwork.NewGenerator(artwork.Config{
		Style:  cfg.Image.Style,
		Width:  width,
		Height: height,
	}, images, provider, logger, genOpts...)

	svc, err := New(Deps{
		Liturgy:   assembler,
		Passages:  passage.NewFetcher(bible, cfg.Scripture.MaxConcurrency, logger),
		Art:       generator,
		Search:    bible,
		Saints:    directory,
		History:   history,
		Scripture: scripturecache.New(cfg.Cache.ScriptureMaxEntries),
		Images:    images,
		Logger:    logger,
	})
	if err != nil {
		if store != nil {
			_ = store.Close()
		}
		return nil, err
	}
	if store != nil {
		svc.closers = append(svc.closers, store)
	}
	return svc, nil
}

func loadSaints(cfg *config.Config) (*saints.Directory, error) {
	if cfg.Saints.File != "" {
		return saints.LoadFile(cfg.Saints.File)
	}
	return saints.Load()
}
