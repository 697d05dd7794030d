package artwork

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log/slog"
	"time"

	"lectio/internal/archive"
	"lectio/internal/logging"
	"lectio/internal/services"
)

// Image sources.
const (
	SourceMemory      = "memory"
	SourceDisk        = "disk"
	SourceProvider    = "provider"
	SourcePlaceholder = "placeholder"
)

const (
	contentTypeJPEG = "image/jpeg"
	jpegQuality     = 90
)

// Image is a generated or cached artwork.
type Image struct {
	Key         string `json:"key"`
	Data        []byte `json:"-"`
	ContentType string `json:"content_type"`
	Placeholder bool   `json:"placeholder"`
	Source      string `json:"source"`
	Prompt      string `json:"prompt,omitempty"`
}

// Provider produces encoded image bytes from a prompt. imagegen.Client
// satisfies it.
type Provider interface {
	Generate(ctx context.Context, prompt string) ([]byte, error)
}

// Gallery records generated artwork.
type Gallery interface {
	RecordArtwork(ctx context.Context, record archive.ArtworkRecord) error
}

// Config controls prompts and placeholder dimensions.
type Config struct {
	Style  string
	Width  int
	Height int
}

// Generator resolves artwork through the cache, the provider and, as a last
// resort, a placeholder.
type Generator struct {
	cfg      Config
	cache    *Cache
	provider Provider
	gallery  Gallery
	clock    func() time.Time
	logger   *slog.Logger
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithGallery records successful generations.
func WithGallery(gallery Gallery) GeneratorOption {
	return func(g *Generator) {
		g.gallery = gallery
	}
}

// WithGeneratorClock overrides time.Now for gallery timestamps.
func WithGeneratorClock(clock func() time.Time) GeneratorOption {
	return func(g *Generator) {
		if clock != nil {
			g.clock = clock
		}
	}
}

// NewGenerator builds a Generator. A nil provider disables generation and
// every miss yields a placeholder.
func NewGenerator(cfg Config, cache *Cache, provider Provider, logger *slog.Logger, opts ...GeneratorOption) *Generator {
	if cfg.Width <= 0 {
		cfg.Width = defaultDimension
	}
	if cfg.Height <= 0 {
		cfg.Height = defaultDimension
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if cache == nil {
		cache, _ = NewCache("", 0)
	}
	g := &Generator{
		cfg:      cfg,
		cache:    cache,
		provider: provider,
		clock:    time.Now,
		logger:   logging.NewComponentLogger(logger, "artwork"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Cache exposes the generator's cache.
func (g *Generator) Cache() *Cache {
	return g.cache
}

// Generate returns artwork for req. Provider failures fall back to a
// placeholder that is not cached, so a later call retries the provider. The
// only error returned is context cancellation.
func (g *Generator) Generate(ctx context.Context, req Request) (Image, error) {
	if err := ctx.Err(); err != nil {
		return Image{}, err
	}
	key := CacheKey(req.Identity(), req.StyleTag(g.cfg.Style))
	if data, source, ok := g.cache.Get(key); ok {
		return Image{Key: key, Data: data, ContentType: contentTypeJPEG, Source: source}, nil
	}

	prompt := BuildPrompt(req, g.cfg.Style)
	logger := logging.WithContext(ctx, g.logger).With(logging.String("cache_key", key))
	if g.provider == nil {
		logger.Debug("image generation disabled; using placeholder")
		return g.placeholder(key, req, prompt), nil
	}

	start := g.clock()
	raw, err := g.provider.Generate(ctx, prompt)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Image{}, ctxErr
		}
		logging.WarnWithContext(logger, "image generation failed; using placeholder", "image_generation_fallback",
			logging.Error(err),
			logging.String(logging.FieldImpact, "placeholder artwork shown"),
			logging.String(logging.FieldErrorHint, "check image provider key and quota"),
		)
		return g.placeholder(key, req, prompt), nil
	}

	data, err := toJPEG(raw)
	if err != nil {
		logging.WarnWithContext(logger, "image provider returned undecodable data; using placeholder", "image_generation_fallback",
			logging.Error(services.Wrap(services.ErrGenerationFailure, "artwork", "decode", "provider image", err)),
			logging.String(logging.FieldImpact, "placeholder artwork shown"),
		)
		return g.placeholder(key, req, prompt), nil
	}

	if err := g.cache.Put(key, data); err != nil {
		logging.WarnWithContext(logger, "failed to persist image", "image_cache_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "image will be regenerated after restart"),
		)
	}
	logger.Info("image generated",
		logging.String(logging.FieldEventType, "image_generated"),
		logging.Int("bytes", len(data)),
		logging.Duration("elapsed", g.clock().Sub(start)),
	)
	g.record(ctx, key, req, prompt)
	return Image{Key: key, Data: data, ContentType: contentTypeJPEG, Source: SourceProvider, Prompt: prompt}, nil
}

func (g *Generator) placeholder(key string, req Request, prompt string) Image {
	return Image{
		Key:         key,
		Data:        Placeholder(key, req.Season, g.cfg.Width, g.cfg.Height),
		ContentType: contentTypeJPEG,
		Placeholder: true,
		Source:      SourcePlaceholder,
		Prompt:      prompt,
	}
}

func (g *Generator) record(ctx context.Context, key string, req Request, prompt string) {
	if g.gallery == nil {
		return
	}
	ref := ""
	if req.Reference != nil {
		ref = req.Reference.DisplayText()
	}
	rec := archive.ArtworkRecord{
		Key:       key,
		Reference: ref,
		Context:   req.Context.String(),
		Season:    req.Season.String(),
		Prompt:    prompt,
		Path:      g.cache.Path(key),
		CreatedAt: g.clock(),
	}
	if err := g.gallery.RecordArtwork(ctx, rec); err != nil {
		g.logger.Warn("failed to record artwork", logging.Error(err), logging.String("cache_key", key))
	}
}

func toJPEG(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
