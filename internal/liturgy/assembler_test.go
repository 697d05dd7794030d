package liturgy

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"lectio/internal/scripture"
	"lectio/internal/services/feed"
)

type fakeFeed struct {
	mu    sync.Mutex
	items map[string]feed.Item
	err   error
	calls int
}

func (f *fakeFeed) TodayItem(_ context.Context, date time.Time) (feed.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return feed.Item{}, f.err
	}
	item, ok := f.items[DateKey(date)]
	if !ok {
		return feed.Item{}, errors.New("no item")
	}
	return item, nil
}

func (f *fakeFeed) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

type fakeExtractor struct{}

func (fakeExtractor) Extract(description string) scripture.MassReadings {
	return scripture.MassReadings{Gospel: scripture.NewBlockReading("Gospel", description, nil)}
}

type fakeSaints map[string]Saint

func (f fakeSaints) LookupByFeastDay(date time.Time) (Saint, bool) {
	s, ok := f[FeastDayKey(date)]
	return s, ok
}

type memoryStore struct {
	days  map[string]LiturgicalDay
	saved int
}

func (m *memoryStore) SaveDay(_ context.Context, day LiturgicalDay) error {
	if m.days == nil {
		m.days = map[string]LiturgicalDay{}
	}
	m.days[day.DateKey()] = day
	m.saved++
	return nil
}

func (m *memoryStore) LoadDay(_ context.Context, date time.Time) (LiturgicalDay, bool, error) {
	day, ok := m.days[DateKey(date)]
	return day, ok, nil
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newFixture() (*fakeFeed, *clock) {
	f := &fakeFeed{items: map[string]feed.Item{
		"2026-10-16": {Title: "Memorial of Saint Hedwig, Religious", Description: "Woe to you, scholars of the law."},
		"2026-10-17": {Title: "Memorial of Saint Ignatius of Antioch, Bishop and Martyr", Description: "Whoever acknowledges me before others."},
	}}
	return f, &clock{now: time.Date(2026, 10, 16, 7, 30, 0, 0, time.UTC)}
}

func TestAssemblerRefreshReady(t *testing.T) {
	source, clk := newFixture()
	saints := fakeSaints{"10-16": {Name: "Saint Margaret Mary Alacoque", FeastDay: "10-16", Rank: OptionalMemorial}}
	a := NewAssembler(source, fakeExtractor{}, nil, WithClock(clk.Now), WithSaints(saints))

	if a.Current().State != Idle {
		t.Fatalf("expected idle before refresh")
	}
	day, err := a.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if day.Rank != Memorial {
		t.Fatalf("expected title rank to outrank saint, got %s", day.Rank)
	}
	if day.Season != OrdinaryTime || day.Color != Green {
		t.Fatalf("unexpected season/color %s/%s", day.Season, day.Color)
	}
	if day.Saint == nil || day.Saint.Name != "Saint Margaret Mary Alacoque" {
		t.Fatalf("expected saint attached, got %+v", day.Saint)
	}
	if got := day.Readings.Gospel.Text(); got != "Woe to you, scholars of the law." {
		t.Fatalf("unexpected gospel %q", got)
	}
	if !day.Date.Equal(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected date truncated to midnight, got %v", day.Date)
	}
	snap := a.Current()
	if snap.State != Ready || snap.Day == nil || snap.Day.Title != day.Title {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestAssemblerSaintRankCanRaiseDay(t *testing.T) {
	source, clk := newFixture()
	source.items["2026-10-16"] = feed.Item{Title: "Thursday of the Twenty-eighth Week in Ordinary Time"}
	saints := fakeSaints{"10-16": {Name: "Saint Hedwig", Rank: OptionalMemorial}}
	a := NewAssembler(source, fakeExtractor{}, nil, WithClock(clk.Now), WithSaints(saints))
	day, err := a.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if day.Rank != OptionalMemorial {
		t.Fatalf("expected optional memorial, got %s", day.Rank)
	}
}

func TestAssemblerFailureRetainsPrevious(t *testing.T) {
	source, clk := newFixture()
	a := NewAssembler(source, fakeExtractor{}, nil, WithClock(clk.Now))
	first, err := a.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	source.setErr(errors.New("network down"))
	if _, err := a.Refresh(context.Background()); err == nil {
		t.Fatal("expected refresh to fail")
	}
	snap := a.Current()
	if snap.State != Failed {
		t.Fatalf("expected failed state, got %s", snap.State)
	}
	if snap.Day == nil || snap.Day.Title != first.Title {
		t.Fatalf("expected previous day retained, got %+v", snap.Day)
	}
	if !strings.Contains(snap.Error, "network down") {
		t.Fatalf("expected captured error, got %q", snap.Error)
	}
}

func TestAssemblerTodayCachesByDate(t *testing.T) {
	source, clk := newFixture()
	a := NewAssembler(source, fakeExtractor{}, nil, WithClock(clk.Now))

	if _, err := a.Today(context.Background()); err != nil {
		t.Fatalf("Today: %v", err)
	}
	if _, err := a.Today(context.Background()); err != nil {
		t.Fatalf("Today: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cached second call, got %d fetches", source.calls)
	}

	clk.Set(time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC))
	day, err := a.Today(context.Background())
	if err != nil {
		t.Fatalf("Today: %v", err)
	}
	if source.calls != 2 || day.Color != Red {
		t.Fatalf("expected refresh for new date, calls=%d color=%s", source.calls, day.Color)
	}
}

func TestAssemblerTodayReturnsStaleDayOnFailure(t *testing.T) {
	source, clk := newFixture()
	a := NewAssembler(source, fakeExtractor{}, nil, WithClock(clk.Now))
	if _, err := a.Today(context.Background()); err != nil {
		t.Fatalf("Today: %v", err)
	}
	clk.Set(time.Date(2026, 10, 17, 6, 0, 0, 0, time.UTC))
	source.setErr(errors.New("timeout"))
	day, err := a.Today(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasPrefix(day.Title, "Memorial of Saint Hedwig") {
		t.Fatalf("expected stale day, got %q", day.Title)
	}
}

func TestAssemblerArchive(t *testing.T) {
	source, clk := newFixture()
	store := &memoryStore{}
	a := NewAssembler(source, fakeExtractor{}, nil, WithClock(clk.Now), WithStore(store))
	if _, err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if store.saved != 1 {
		t.Fatalf("expected day archived, saved=%d", store.saved)
	}

	cold := NewAssembler(&fakeFeed{err: errors.New("offline")}, fakeExtractor{}, nil, WithClock(clk.Now), WithStore(store))
	day, err := cold.Today(context.Background())
	if err != nil {
		t.Fatalf("expected archived fallback, got %v", err)
	}
	if !strings.HasPrefix(day.Title, "Memorial of Saint Hedwig") {
		t.Fatalf("unexpected archived day %q", day.Title)
	}
	if !cold.Current().Archived {
		t.Fatal("expected snapshot flagged as archived")
	}
}

func TestAssemblerConcurrentTodaySingleFetch(t *testing.T) {
	source, clk := newFixture()
	a := NewAssembler(source, fakeExtractor{}, nil, WithClock(clk.Now))
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := a.Today(context.Background()); err != nil {
				t.Errorf("Today: %v", err)
			}
		}()
	}
	wg.Wait()
	if source.calls != 1 {
		t.Fatalf("expected single fetch, got %d", source.calls)
	}
}

func TestLiturgicalDayJSON(t *testing.T) {
	day := Assemble(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), feed.Item{Title: "Feast of Saint Luke, Evangelist"}, scripture.MassReadings{}, nil)
	data, err := json.Marshal(day)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"season":"Ordinary Time"`, `"color":"Green"`, `"rank":"Feast"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %s in %s", want, data)
		}
	}
	var back LiturgicalDay
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Rank != Feast || back.Season != OrdinaryTime {
		t.Fatalf("unexpected decoded day %+v", back)
	}
}

func TestAssemblerSubscribe(t *testing.T) {
	source, clk := newFixture()
	a := NewAssembler(source, fakeExtractor{}, nil, WithClock(clk.Now))

	updates, cancel := a.Subscribe()
	if _, err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	select {
	case snap := <-updates:
		// Loading was overwritten by Ready since nobody was receiving.
		if snap.State != Ready || snap.Day == nil {
			t.Fatalf("expected ready snapshot, got %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	cancel()
	if _, ok := <-updates; ok {
		t.Fatal("expected channel closed after cancel")
	}

	// publishing after cancel must not panic
	if _, err := a.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh returned error: %v", err)
	}
}
