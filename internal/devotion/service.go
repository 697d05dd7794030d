package devotion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"lectio/internal/archive"
	"lectio/internal/artwork"
	"lectio/internal/liturgy"
	"lectio/internal/logging"
	"lectio/internal/scripture"
	"lectio/internal/scripturecache"
	"lectio/internal/services"
	"lectio/internal/services/bibleapi"
	"lectio/internal/textutil"
)

const (
	defaultSearchLimit = 20
	// minSearchScore drops cached readings that share almost nothing with the query.
	minSearchScore = 0.05
)

// LiturgySource produces the liturgical day. liturgy.Assembler satisfies it.
type LiturgySource interface {
	Today(ctx context.Context) (liturgy.LiturgicalDay, error)
	Refresh(ctx context.Context) (liturgy.LiturgicalDay, error)
	Current() liturgy.Snapshot
	Subscribe() (<-chan liturgy.Snapshot, func())
}

// PassageFetcher resolves a reference into ordered verses. passage.Fetcher
// satisfies it.
type PassageFetcher interface {
	FetchReference(ctx context.Context, ref scripture.Reference) []scripture.Verse
}

// Searcher runs provider-side keyword searches. bibleapi.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, bibleID, query string, limit int) ([]bibleapi.SearchHit, error)
}

// ArtGenerator renders artwork. artwork.Generator satisfies it.
type ArtGenerator interface {
	Generate(ctx context.Context, req artwork.Request) (artwork.Image, error)
}

// SaintDirectory answers feast-day lookups. saints.Directory satisfies it.
type SaintDirectory interface {
	LookupByFeastDay(date time.Time) (liturgy.Saint, bool)
	OnFeastDay(date time.Time) []liturgy.Saint
}

// History lists archived days and generated artwork. archive.Store satisfies it.
type History interface {
	ListDays(ctx context.Context, limit int) ([]archive.DaySummary, error)
	ListArtwork(ctx context.Context, limit int) ([]archive.ArtworkRecord, error)
}

// Deps are the collaborators of a Service. Liturgy, Passages and Art are
// required; the rest are optional.
type Deps struct {
	Liturgy   LiturgySource
	Passages  PassageFetcher
	Art       ArtGenerator
	Search    Searcher
	Saints    SaintDirectory
	History   History
	Scripture *scripturecache.Cache
	Images    *artwork.Cache
	Clock     func() time.Time
	Logger    *slog.Logger
}

// ArtRequest selects the passage to illustrate. Exactly one of Reference or
// Verse should be set. Context is a context tag such as "psalm"; empty or
// unknown tags fall back to the book's default treatment.
type ArtRequest struct {
	Reference *scripture.Reference
	Verse     *scripture.Verse
	Context   string
	// WithSaint adds the saint of the current day to the prompt.
	WithSaint bool
}

// Service implements the devotional core operations.
type Service struct {
	liturgy   LiturgySource
	passages  PassageFetcher
	art       ArtGenerator
	search    Searcher
	saints    SaintDirectory
	history   History
	scripture *scripturecache.Cache
	images    *artwork.Cache
	clock     func() time.Time
	logger    *slog.Logger

	closers []io.Closer
}

// New builds a Service from explicit collaborators.
func New(deps Deps) (*Service, error) {
	if deps.Liturgy == nil || deps.Passages == nil || deps.Art == nil {
		return nil, errors.New("devotion requires liturgy source, passage fetcher and art generator")
	}
	if deps.Scripture == nil {
		deps.Scripture = scripturecache.New(0)
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		liturgy:   deps.Liturgy,
		passages:  deps.Passages,
		art:       deps.Art,
		search:    deps.Search,
		saints:    deps.Saints,
		history:   deps.History,
		scripture: deps.Scripture,
		images:    deps.Images,
		clock:     deps.Clock,
		logger:    logging.NewComponentLogger(logger, "devotion"),
	}, nil
}

// Close releases resources opened by Open.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

// GetTodaysLiturgy returns today's liturgical day, assembling it when the
// cached one is missing or from a previous date.
func (s *Service) GetTodaysLiturgy(ctx context.Context) (liturgy.LiturgicalDay, error) {
	ctx = services.WithLiturgicalDate(ctx, s.clock())
	return s.liturgy.Today(ctx)
}

// RefreshLiturgy forces a feed fetch regardless of the cached day.
func (s *Service) RefreshLiturgy(ctx context.Context) (liturgy.LiturgicalDay, error) {
	ctx = services.WithLiturgicalDate(ctx, s.clock())
	return s.liturgy.Refresh(ctx)
}

// LiturgySnapshot reports the assembler state without fetching.
func (s *Service) LiturgySnapshot() liturgy.Snapshot {
	return s.liturgy.Current()
}

// WatchLiturgy streams assembler state changes until cancel is called.
func (s *Service) WatchLiturgy() (<-chan liturgy.Snapshot, func()) {
	return s.liturgy.Subscribe()
}

// GetScripture returns the reading for ref from the cache, fetching and
// caching it on a miss. A fetch that yields no verses is a FetchFailure and
// is not cached.
func (s *Service) GetScripture(ctx context.Context, ref scripture.Reference) (scripture.Reading, error) {
	if ref.IsZero() {
		return scripture.Reading{}, services.Wrap(services.ErrInvalidReference, "devotion", "get scripture", "reference is empty", nil)
	}
	if reading, ok := s.scripture.Get(ref); ok {
		return reading, nil
	}
	ctx = services.WithReference(ctx, ref.DisplayText())
	verses := s.passages.FetchReference(ctx, ref)
	if err := ctx.Err(); err != nil {
		return scripture.Reading{}, err
	}
	if len(verses) == 0 {
		return scripture.Reading{}, services.Wrap(services.ErrFetchFailure, "devotion", "get scripture",
			fmt.Sprintf("no verses returned for %s", ref.DisplayText()), nil)
	}
	reading := scripture.NewPassageReading(ref, verses)
	s.scripture.Store(ref, reading)
	return reading, nil
}

// GetScriptureText parses a citation such as "John 3:16-18" or "JHN.3.16"
// and resolves it with GetScripture.
func (s *Service) GetScriptureText(ctx context.Context, citation string) (scripture.Reading, error) {
	ref, err := scripture.ParseLooseReference(citation)
	if err != nil {
		return scripture.Reading{}, err
	}
	return s.GetScripture(ctx, ref)
}

// GenerateArt renders artwork for a reference or a verse. Provider failures
// yield a placeholder image, so the only errors are unresolvable references
// and cancellation.
func (s *Service) GenerateArt(ctx context.Context, req ArtRequest) (artwork.Image, error) {
	var (
		artReq artwork.Request
		book   string
	)
	switch {
	case req.Reference != nil && !req.Reference.IsZero():
		reading, err := s.GetScripture(ctx, *req.Reference)
		if err != nil {
			return artwork.Image{}, err
		}
		ref := *req.Reference
		artReq.Reference = &ref
		artReq.Text = reading.Text()
		book = ref.Book
	case req.Verse != nil && strings.TrimSpace(req.Verse.Text) != "":
		artReq.Text = req.Verse.Text
		book = req.Verse.BookName
		if ref, err := scripture.ParseDisplayReference(req.Verse.Reference); err == nil {
			artReq.Reference = &ref
			if book == "" {
				book = ref.Book
			}
		}
	default:
		return artwork.Image{}, services.Wrap(services.ErrInvalidReference, "devotion", "generate art", "reference or verse text is required", nil)
	}

	artReq.Context = s.resolveContext(ctx, req.Context, book)
	day, haveDay := s.currentDay()
	if haveDay {
		artReq.Season = day.Season
	} else {
		artReq.Season = liturgy.ClassifySeason(s.clock())
	}
	if req.WithSaint {
		artReq.Saint = s.saintForToday(day, haveDay)
	}
	return s.art.Generate(ctx, artReq)
}

// SearchScripture asks the provider first. When the provider is missing,
// fails or finds nothing, cached readings are ranked by text similarity. The
// result may be empty; only cancellation is reported as an error.
func (s *Service) SearchScripture(ctx context.Context, query string) ([]scripture.Reading, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if s.search != nil {
		hits, err := s.search.Search(ctx, "", query, defaultSearchLimit)
		switch {
		case err == nil && len(hits) > 0:
			readings := make([]scripture.Reading, 0, len(hits))
			for _, hit := range hits {
				ref := hit.Reference
				readings = append(readings, scripture.NewBlockReading(ref.DisplayText(), hit.Text, &ref))
			}
			return readings, nil
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "provider search failed; ranking cached readings", "search_fallback",
				logging.Error(err),
				logging.String(logging.FieldImpact, "results limited to previously fetched passages"),
			)
		}
	}
	return s.searchCached(query), nil
}

// SaintsOn lists the saints of a date, highest precedence first.
func (s *Service) SaintsOn(date time.Time) []liturgy.Saint {
	if s.saints == nil {
		return nil
	}
	return s.saints.OnFeastDay(date)
}

// History returns the most recent archived days.
func (s *Service) History(ctx context.Context, limit int) ([]archive.DaySummary, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.ListDays(ctx, limit)
}

// Gallery returns the most recently generated artwork.
func (s *Service) Gallery(ctx context.Context, limit int) ([]archive.ArtworkRecord, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.ListArtwork(ctx, limit)
}

// Status summarizes the caches and the assembler.
type Status struct {
	Liturgy   liturgy.Snapshot     `json:"liturgy"`
	Scripture scripturecache.Stats `json:"scripture_cache"`
	Images    *artwork.CacheStats  `json:"image_cache,omitempty"`
}

// Status reports runtime state without touching the network.
func (s *Service) Status() Status {
	status := Status{
		Liturgy:   s.liturgy.Current(),
		Scripture: s.scripture.Stats(),
	}
	if s.images != nil {
		stats := s.images.Stats()
		status.Images = &stats
	}
	return status
}

// ClearScriptureCache empties the scripture cache and reports how many
// readings it held.
func (s *Service) ClearScriptureCache() int {
	dropped := s.scripture.Len()
	s.scripture.Clear()
	return dropped
}

func (s *Service) resolveContext(ctx context.Context, tag, book string) artwork.ContextType {
	if strings.TrimSpace(tag) != "" {
		ct, err := artwork.ParseContextType(tag)
		if err == nil {
			return ct
		}
		logging.WithContext(ctx, s.logger).Debug("unknown context tag; using book default",
			logging.String("context", tag),
			logging.String("book", book),
		)
	}
	return artwork.ContextForBook(book)
}

func (s *Service) currentDay() (liturgy.LiturgicalDay, bool) {
	snap := s.liturgy.Current()
	if snap.Day == nil {
		return liturgy.LiturgicalDay{}, false
	}
	if liturgy.DateKey(snap.Day.Date) != liturgy.DateKey(s.clock()) {
		return liturgy.LiturgicalDay{}, false
	}
	return *snap.Day, true
}

func (s *Service) saintForToday(day liturgy.LiturgicalDay, haveDay bool) *liturgy.Saint {
	if haveDay && day.Saint != nil {
		saint := *day.Saint
		return &saint
	}
	if s.saints == nil {
		return nil
	}
	if saint, ok := s.saints.LookupByFeastDay(s.clock()); ok {
		return &saint
	}
	return nil
}

func (s *Service) searchCached(query string) []scripture.Reading {
	cached := s.scripture.Readings()
	if len(cached) == 0 {
		return nil
	}
	docs := make([]string, len(cached))
	for i, reading := range cached {
		docs[i] = reading.Title + " " + reading.Text()
	}
	matches := textutil.Rank(query, docs, minSearchScore)
	if len(matches) > defaultSearchLimit {
		matches = matches[:defaultSearchLimit]
	}
	results := make([]scripture.Reading, 0, len(matches))
	for _, m := range matches {
		results = append(results, cached[m.Index])
	}
	return results
}
