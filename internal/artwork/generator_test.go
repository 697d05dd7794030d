package artwork

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/jpeg"
	"os"
	"sync"
	"testing"
	"time"

	"lectio/internal/archive"
	"lectio/internal/liturgy"
	"lectio/internal/scripture"
	"lectio/internal/testsupport"
)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	data    []byte
	err     error
	block   bool
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string) ([]byte, error) {
	f.mu.Lock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.data, f.err
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeGallery struct {
	records []archive.ArtworkRecord
}

func (g *fakeGallery) RecordArtwork(_ context.Context, record archive.ArtworkRecord) error {
	g.records = append(g.records, record)
	return nil
}

func gospelRequest(t *testing.T) Request {
	t.Helper()
	ref, err := scripture.NewReference("John", 1, 1, 5)
	if err != nil {
		t.Fatalf("NewReference: %v", err)
	}
	return Request{
		Reference: &ref,
		Text:      "In the beginning was the Word.",
		Context:   Gospel,
		Season:    liturgy.ChristmasTime,
	}
}

func TestGeneratorProviderSuccess(t *testing.T) {
	cache, err := NewCache(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	provider := &fakeProvider{data: testsupport.PNG(t, 16, 16, color.RGBA{R: 200, G: 180, B: 90, A: 255})}
	gallery := &fakeGallery{}
	now := time.Date(2026, 12, 25, 9, 0, 0, 0, time.UTC)
	gen := NewGenerator(Config{Style: "oil on canvas", Width: 16, Height: 16}, cache, provider, nil,
		WithGallery(gallery), WithGeneratorClock(func() time.Time { return now }))

	req := gospelRequest(t)
	img, err := gen.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if img.Placeholder || img.Source != SourceProvider || img.ContentType != "image/jpeg" {
		t.Fatalf("unexpected image %+v", img)
	}
	if _, err := jpeg.Decode(bytes.NewReader(img.Data)); err != nil {
		t.Fatalf("expected provider PNG re-encoded as JPEG: %v", err)
	}
	if _, err := os.Stat(cache.Path(img.Key)); err != nil {
		t.Fatalf("expected image on disk: %v", err)
	}
	if len(gallery.records) != 1 {
		t.Fatalf("expected one gallery record, got %d", len(gallery.records))
	}
	rec := gallery.records[0]
	if rec.Reference != "John 1:1-5" || rec.Context != "gospel" || rec.Season != "Christmas Time" || !rec.CreatedAt.Equal(now) {
		t.Fatalf("unexpected gallery record %+v", rec)
	}
	if rec.Path != cache.Path(img.Key) || rec.Prompt != provider.prompts[0] {
		t.Fatalf("expected record to carry path and prompt, got %+v", rec)
	}

	again, err := gen.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	if again.Source != SourceMemory || again.Key != img.Key {
		t.Fatalf("expected memory hit, got %+v", again)
	}
	if provider.callCount() != 1 {
		t.Fatalf("expected provider called once, got %d", provider.callCount())
	}
}

func TestGeneratorProviderFailureFallsBack(t *testing.T) {
	provider := &fakeProvider{err: errors.New("quota exceeded")}
	gen := NewGenerator(Config{Width: 8, Height: 8}, nil, provider, nil)

	req := gospelRequest(t)
	img, err := gen.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !img.Placeholder || img.Source != SourcePlaceholder {
		t.Fatalf("expected placeholder, got %+v", img)
	}
	if !bytes.Equal(img.Data, Placeholder(img.Key, req.Season, 8, 8)) {
		t.Fatal("expected deterministic placeholder bytes")
	}

	if _, err := gen.Generate(context.Background(), req); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if provider.callCount() != 2 {
		t.Fatalf("expected placeholder not to be cached, provider calls=%d", provider.callCount())
	}
}

func TestGeneratorUndecodableProviderData(t *testing.T) {
	provider := &fakeProvider{data: []byte("not an image")}
	gen := NewGenerator(Config{Width: 8, Height: 8}, nil, provider, nil)
	img, err := gen.Generate(context.Background(), Request{Text: "Be still", Context: Psalm})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !img.Placeholder {
		t.Fatalf("expected placeholder, got %+v", img)
	}
	if stats := gen.Cache().Stats(); stats.MemoryEntries != 0 {
		t.Fatalf("expected nothing cached, got %+v", stats)
	}
}

func TestGeneratorWithoutProvider(t *testing.T) {
	gen := NewGenerator(Config{}, nil, nil, nil)
	img, err := gen.Generate(context.Background(), Request{Text: "Rejoice always", Context: Epistle, Season: liturgy.Advent})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !img.Placeholder || len(img.Data) == 0 {
		t.Fatalf("expected placeholder, got %+v", img)
	}
}

func TestGeneratorCacheHitSkipsProvider(t *testing.T) {
	cache, err := NewCache("", 0)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	provider := &fakeProvider{err: errors.New("should not be called")}
	gen := NewGenerator(Config{Style: "fresco"}, cache, provider, nil)

	req := gospelRequest(t)
	key := CacheKey(req.Identity(), req.StyleTag("fresco"))
	cache.putMemory(key, []byte("cached"))

	img, err := gen.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(img.Data) != "cached" || img.Source != SourceMemory {
		t.Fatalf("expected cached image, got %+v", img)
	}
	if provider.callCount() != 0 {
		t.Fatalf("expected no provider calls, got %d", provider.callCount())
	}
}

func TestGeneratorCancelled(t *testing.T) {
	provider := &fakeProvider{block: true}
	gen := NewGenerator(Config{}, nil, provider, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := gen.Generate(ctx, gospelRequest(t)); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	if _, err := gen.Generate(cancelled, gospelRequest(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled error, got %v", err)
	}
}
