// Package passage fetches verse ranges from the scripture provider with
// bounded parallelism and partial-failure tolerance.
package passage

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"lectio/internal/logging"
	"lectio/internal/scripture"
)

const (
	// MaxExtraVerses caps a range at start+20, so at most 21 verses.
	MaxExtraVerses = 20
	// MaxConcurrency is the hard ceiling on in-flight verse requests.
	MaxConcurrency     = 20
	defaultConcurrency = 8
)

// VerseSource fetches one verse. bibleapi.Client satisfies it.
type VerseSource interface {
	FetchVerse(ctx context.Context, bookCode string, chapter, verse int) (scripture.Verse, error)
}

// Fetcher resolves verse ranges into ordered verses.
type Fetcher struct {
	source      VerseSource
	concurrency int
	logger      *slog.Logger
}

// NewFetcher builds a Fetcher. concurrency is clamped to [1, MaxConcurrency];
// zero selects the default.
func NewFetcher(source VerseSource, concurrency int, logger *slog.Logger) *Fetcher {
	switch {
	case concurrency <= 0:
		concurrency = defaultConcurrency
	case concurrency > MaxConcurrency:
		concurrency = MaxConcurrency
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Fetcher{
		source:      source,
		concurrency: concurrency,
		logger:      logging.NewComponentLogger(logger, "passage"),
	}
}

// FetchRange fetches verses start..min(end, start+20) of one chapter. Failed
// verses are logged and skipped. When every verse fails the start verse is
// retried once on its own; if that fails too the result is empty (not nil).
func (f *Fetcher) FetchRange(ctx context.Context, bookCode string, chapter, start, end int) []scripture.Verse {
	if end < start {
		end = start
	}
	if end > start+MaxExtraVerses {
		end = start + MaxExtraVerses
	}

	type result struct {
		verse scripture.Verse
		ok    bool
	}
	results := make([]result, end-start+1)

	sem := make(chan struct{}, f.concurrency)
	var wg sync.WaitGroup
	for n := start; n <= end; n++ {
		wg.Add(1)
		go func(idx, number int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			verse, err := f.source.FetchVerse(ctx, bookCode, chapter, number)
			if err != nil {
				f.logFailure(ctx, bookCode, chapter, number, err)
				return
			}
			results[idx] = result{verse: verse, ok: true}
		}(n-start, n)
	}
	wg.Wait()

	verses := make([]scripture.Verse, 0, len(results))
	for _, r := range results {
		if r.ok {
			verses = append(verses, r.verse)
		}
	}
	if len(verses) > 0 {
		sort.SliceStable(verses, func(i, j int) bool {
			return verses[i].VerseNumber < verses[j].VerseNumber
		})
		return verses
	}

	if ctx.Err() != nil {
		return verses
	}
	verse, err := f.source.FetchVerse(ctx, bookCode, chapter, start)
	if err != nil {
		logging.WarnWithContext(
			logging.WithContext(ctx, f.logger),
			"passage unavailable",
			"passage_empty",
			logging.String("book", bookCode),
			logging.Int("chapter", chapter),
			logging.Int("start_verse", start),
			logging.Int("end_verse", end),
			logging.Error(err),
			logging.String(logging.FieldImpact, "reading returned without text"),
			logging.String(logging.FieldErrorHint, "check scripture provider credentials and connectivity"),
		)
		return verses
	}
	return append(verses, verse)
}

// FetchReference fetches the verses covered by ref.
func (f *Fetcher) FetchReference(ctx context.Context, ref scripture.Reference) []scripture.Verse {
	return f.FetchRange(ctx, ref.BookCode(), ref.Chapter, ref.StartVerse, ref.LastVerse())
}

func (f *Fetcher) logFailure(ctx context.Context, bookCode string, chapter, verse int, err error) {
	logging.WarnWithContext(
		logging.WithContext(ctx, f.logger),
		"verse fetch failed",
		"verse_fetch_failed",
		logging.String("book", bookCode),
		logging.Int("chapter", chapter),
		logging.Int("verse", verse),
		logging.Error(err),
		logging.String(logging.FieldImpact, "verse omitted from passage"),
	)
}
