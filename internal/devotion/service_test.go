package devotion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lectio/internal/archive"
	"lectio/internal/artwork"
	"lectio/internal/liturgy"
	"lectio/internal/scripture"
	"lectio/internal/scripturecache"
	"lectio/internal/services"
	"lectio/internal/services/bibleapi"
)

var testNow = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

type fakeLiturgy struct {
	day  *liturgy.LiturgicalDay
	err  error
	refs int
}

func (f *fakeLiturgy) Today(context.Context) (liturgy.LiturgicalDay, error) {
	if f.err != nil {
		return liturgy.LiturgicalDay{}, f.err
	}
	return *f.day, nil
}

func (f *fakeLiturgy) Refresh(ctx context.Context) (liturgy.LiturgicalDay, error) {
	f.refs++
	return f.Today(ctx)
}

func (f *fakeLiturgy) Current() liturgy.Snapshot {
	if f.day == nil {
		return liturgy.Snapshot{State: liturgy.Idle}
	}
	return liturgy.Snapshot{State: liturgy.Ready, Day: f.day}
}

func (f *fakeLiturgy) Subscribe() (<-chan liturgy.Snapshot, func()) {
	ch := make(chan liturgy.Snapshot)
	return ch, func() { close(ch) }
}

type fakePassages struct {
	mu     sync.Mutex
	calls  int
	verses map[string][]scripture.Verse
}

func (f *fakePassages) FetchReference(_ context.Context, ref scripture.Reference) []scripture.Verse {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.verses[ref.APIFormat()]
}

type fakeSearcher struct {
	hits []bibleapi.SearchHit
	err  error
}

func (f *fakeSearcher) Search(context.Context, string, string, int) ([]bibleapi.SearchHit, error) {
	return f.hits, f.err
}

type fakeArt struct {
	requests []artwork.Request
}

func (f *fakeArt) Generate(_ context.Context, req artwork.Request) (artwork.Image, error) {
	f.requests = append(f.requests, req)
	return artwork.Image{Key: "k", Data: []byte("jpeg"), ContentType: "image/jpeg", Source: artwork.SourceProvider}, nil
}

type fakeSaints struct {
	saint liturgy.Saint
}

func (f fakeSaints) LookupByFeastDay(time.Time) (liturgy.Saint, bool) { return f.saint, true }

func (f fakeSaints) OnFeastDay(time.Time) []liturgy.Saint { return []liturgy.Saint{f.saint} }

type fakeHistory struct {
	days []archive.DaySummary
}

func (f fakeHistory) ListDays(context.Context, int) ([]archive.DaySummary, error) { return f.days, nil }

func (f fakeHistory) ListArtwork(context.Context, int) ([]archive.ArtworkRecord, error) {
	return nil, nil
}

func mustRef(t *testing.T, book string, chapter, start, end int) scripture.Reference {
	t.Helper()
	ref, err := scripture.NewReference(book, chapter, start, end)
	if err != nil {
		t.Fatalf("NewReference: %v", err)
	}
	return ref
}

func johnVerses() map[string][]scripture.Verse {
	return map[string][]scripture.Verse{
		"JHN.3.16-17": {
			{Text: "For God so loved the world that he gave his only Son.", Reference: "John 3:16", BookName: "John", Chapter: 3, VerseNumber: 16},
			{Text: "For God did not send his Son into the world to condemn the world.", Reference: "John 3:17", BookName: "John", Chapter: 3, VerseNumber: 17},
		},
		"PSA.23.1": {
			{Text: "The LORD is my shepherd; there is nothing I lack.", Reference: "Psalms 23:1", BookName: "Psalms", Chapter: 23, VerseNumber: 1},
		},
	}
}

func newTestService(t *testing.T, deps Deps) *Service {
	t.Helper()
	if deps.Liturgy == nil {
		deps.Liturgy = &fakeLiturgy{}
	}
	if deps.Passages == nil {
		deps.Passages = &fakePassages{verses: johnVerses()}
	}
	if deps.Art == nil {
		deps.Art = &fakeArt{}
	}
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return testNow }
	}
	svc, err := New(deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(Deps{}); err == nil {
		t.Fatal("expected error for missing collaborators")
	}
}

func TestGetScriptureCachesReading(t *testing.T) {
	passages := &fakePassages{verses: johnVerses()}
	cache := scripturecache.New(0)
	svc := newTestService(t, Deps{Passages: passages, Scripture: cache})
	ref := mustRef(t, "John", 3, 16, 17)

	reading, err := svc.GetScripture(context.Background(), ref)
	if err != nil {
		t.Fatalf("GetScripture: %v", err)
	}
	if len(reading.Verses) != 2 || reading.Title != "John 3:16-17" {
		t.Fatalf("unexpected reading %+v", reading)
	}
	if _, err := svc.GetScripture(context.Background(), mustRef(t, "Jn", 3, 16, 17)); err != nil {
		t.Fatalf("GetScripture alias: %v", err)
	}
	if passages.calls != 1 {
		t.Fatalf("expected one fetch for equal references, got %d", passages.calls)
	}
	if stats := cache.Stats(); stats.Hits != 1 || stats.Entries != 1 {
		t.Fatalf("unexpected cache stats %+v", stats)
	}
}

func TestGetScriptureEmptyFetchIsFailure(t *testing.T) {
	passages := &fakePassages{verses: map[string][]scripture.Verse{}}
	cache := scripturecache.New(0)
	svc := newTestService(t, Deps{Passages: passages, Scripture: cache})

	_, err := svc.GetScripture(context.Background(), mustRef(t, "Genesis", 1, 1, 0))
	if !errors.Is(err, services.ErrFetchFailure) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
	if cache.Len() != 0 {
		t.Fatal("expected failed fetch not to be cached")
	}
	if _, err := svc.GetScripture(context.Background(), scripture.Reference{}); !errors.Is(err, services.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
}

func TestGetScriptureText(t *testing.T) {
	svc := newTestService(t, Deps{})
	reading, err := svc.GetScriptureText(context.Background(), "JHN.3.16-17")
	if err != nil {
		t.Fatalf("GetScriptureText: %v", err)
	}
	if reading.Reference == nil || reading.Reference.Book != "John" {
		t.Fatalf("unexpected reading %+v", reading)
	}
	if _, err := svc.GetScriptureText(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty citation")
	}
}

func TestGenerateArtByReference(t *testing.T) {
	art := &fakeArt{}
	day := &liturgy.LiturgicalDay{
		Date:   testNow,
		Title:  "Memorial of Saint Ignatius of Antioch, Bishop and Martyr",
		Season: liturgy.OrdinaryTime,
		Saint:  &liturgy.Saint{Name: "Saint Ignatius of Antioch", Iconography: "lions"},
	}
	svc := newTestService(t, Deps{Art: art, Liturgy: &fakeLiturgy{day: day}})
	ref := mustRef(t, "John", 3, 16, 17)

	img, err := svc.GenerateArt(context.Background(), ArtRequest{Reference: &ref, WithSaint: true})
	if err != nil {
		t.Fatalf("GenerateArt: %v", err)
	}
	if string(img.Data) != "jpeg" {
		t.Fatalf("unexpected image %+v", img)
	}
	req := art.requests[0]
	if req.Context != artwork.Gospel || req.Season != liturgy.OrdinaryTime {
		t.Fatalf("expected gospel context in ordinary time, got %v %v", req.Context, req.Season)
	}
	if req.Reference == nil || *req.Reference != ref {
		t.Fatalf("expected reference carried, got %+v", req.Reference)
	}
	if req.Text == "" || req.Saint == nil || req.Saint.Name != "Saint Ignatius of Antioch" {
		t.Fatalf("expected text and saint, got %+v", req)
	}
}

func TestGenerateArtByVerse(t *testing.T) {
	art := &fakeArt{}
	svc := newTestService(t, Deps{
		Art:    art,
		Saints: fakeSaints{saint: liturgy.Saint{Name: "Saint Luke"}},
		Clock:  func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) },
	})
	verse := scripture.Verse{Text: "The LORD is my shepherd.", Reference: "Psalms 23:1", BookName: "Psalms", Chapter: 23, VerseNumber: 1}

	if _, err := svc.GenerateArt(context.Background(), ArtRequest{Verse: &verse, Context: "wisdom", WithSaint: true}); err != nil {
		t.Fatalf("GenerateArt: %v", err)
	}
	if _, err := svc.GenerateArt(context.Background(), ArtRequest{Verse: &verse, Context: "mosaic"}); err != nil {
		t.Fatalf("GenerateArt: %v", err)
	}
	if len(art.requests) != 2 {
		t.Fatalf("expected two requests, got %d", len(art.requests))
	}
	first, second := art.requests[0], art.requests[1]
	if first.Context != artwork.Wisdom || second.Context != artwork.Psalm {
		t.Fatalf("expected explicit then book default context, got %v and %v", first.Context, second.Context)
	}
	if first.Season != liturgy.Lent {
		t.Fatalf("expected season from the calendar, got %v", first.Season)
	}
	if first.Saint == nil || first.Saint.Name != "Saint Luke" || second.Saint != nil {
		t.Fatalf("unexpected saints %+v %+v", first.Saint, second.Saint)
	}
	if first.Reference == nil || first.Reference.APIFormat() != "PSA.23.1" {
		t.Fatalf("expected parsed verse reference, got %+v", first.Reference)
	}

	if _, err := svc.GenerateArt(context.Background(), ArtRequest{}); !errors.Is(err, services.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
}

func TestGenerateArtPropagatesFetchFailure(t *testing.T) {
	art := &fakeArt{}
	svc := newTestService(t, Deps{Art: art, Passages: &fakePassages{}})
	ref := mustRef(t, "Mark", 1, 1, 0)
	if _, err := svc.GenerateArt(context.Background(), ArtRequest{Reference: &ref}); !errors.Is(err, services.ErrFetchFailure) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
	if len(art.requests) != 0 {
		t.Fatal("expected no generation without text")
	}
}

func TestSearchScriptureProvider(t *testing.T) {
	ref := mustRef(t, "John", 11, 35, 0)
	svc := newTestService(t, Deps{Search: &fakeSearcher{hits: []bibleapi.SearchHit{{ID: "JHN.11.35", Reference: ref, Text: "And Jesus wept."}}}})

	results, err := svc.SearchScripture(context.Background(), "wept")
	if err != nil {
		t.Fatalf("SearchScripture: %v", err)
	}
	if len(results) != 1 || results[0].Text() != "And Jesus wept." || results[0].Title != "John 11:35" {
		t.Fatalf("unexpected results %+v", results)
	}
	if results, _ := svc.SearchScripture(context.Background(), "   "); results != nil {
		t.Fatalf("expected nil for blank query, got %+v", results)
	}
}

func TestSearchScriptureFallsBackToCache(t *testing.T) {
	svc := newTestService(t, Deps{Search: &fakeSearcher{err: services.ErrFetchFailure}})
	ctx := context.Background()
	if _, err := svc.GetScripture(ctx, mustRef(t, "John", 3, 16, 17)); err != nil {
		t.Fatalf("GetScripture: %v", err)
	}
	if _, err := svc.GetScripture(ctx, mustRef(t, "Psalms", 23, 1, 0)); err != nil {
		t.Fatalf("GetScripture: %v", err)
	}

	results, err := svc.SearchScripture(ctx, "shepherd")
	if err != nil {
		t.Fatalf("SearchScripture: %v", err)
	}
	if len(results) != 1 || results[0].Title != "Psalms 23:1" {
		t.Fatalf("expected cached psalm, got %+v", results)
	}
	if results, _ := svc.SearchScripture(ctx, "leviathan"); len(results) != 0 {
		t.Fatalf("expected no matches, got %+v", results)
	}
}

func TestSearchScriptureWithoutProviderOrCache(t *testing.T) {
	svc := newTestService(t, Deps{})
	results, err := svc.SearchScripture(context.Background(), "grace")
	if err != nil || len(results) != 0 {
		t.Fatalf("expected empty result, got %+v err=%v", results, err)
	}
}

func TestLiturgyPassThrough(t *testing.T) {
	day := &liturgy.LiturgicalDay{Date: testNow, Title: "Saturday"}
	lit := &fakeLiturgy{day: day}
	svc := newTestService(t, Deps{
		Liturgy: lit,
		History: fakeHistory{days: []archive.DaySummary{{Date: "2026-10-16"}}},
		Saints:  fakeSaints{saint: liturgy.Saint{Name: "Saint Hedwig"}},
	})
	got, err := svc.GetTodaysLiturgy(context.Background())
	if err != nil || got.Title != "Saturday" {
		t.Fatalf("unexpected day %+v err=%v", got, err)
	}
	if _, err := svc.RefreshLiturgy(context.Background()); err != nil || lit.refs != 1 {
		t.Fatalf("expected refresh, refs=%d err=%v", lit.refs, err)
	}
	if status := svc.Status(); status.Liturgy.State != liturgy.Ready || status.Images != nil {
		t.Fatalf("unexpected status %+v", status)
	}
	days, err := svc.History(context.Background(), 5)
	if err != nil || len(days) != 1 {
		t.Fatalf("unexpected history %+v err=%v", days, err)
	}
	if saints := svc.SaintsOn(testNow); len(saints) != 1 || saints[0].Name != "Saint Hedwig" {
		t.Fatalf("unexpected saints %+v", saints)
	}

	failing := newTestService(t, Deps{Liturgy: &fakeLiturgy{err: services.ErrFetchFailure}})
	if _, err := failing.GetTodaysLiturgy(context.Background()); !errors.Is(err, services.ErrFetchFailure) {
		t.Fatalf("expected fetch failure, got %v", err)
	}
}

func TestClearScriptureCacheRefetches(t *testing.T) {
	passages := &fakePassages{verses: johnVerses()}
	svc := newTestService(t, Deps{Passages: passages})
	ref := mustRef(t, "John", 3, 16, 17)

	if _, err := svc.GetScripture(context.Background(), ref); err != nil {
		t.Fatalf("GetScripture: %v", err)
	}
	if dropped := svc.ClearScriptureCache(); dropped != 1 {
		t.Fatalf("expected one dropped reading, got %d", dropped)
	}
	if _, err := svc.GetScripture(context.Background(), ref); err != nil {
		t.Fatalf("GetScripture after clear: %v", err)
	}
	if passages.calls != 2 {
		t.Fatalf("expected refetch after clear, got %d fetches", passages.calls)
	}
}
