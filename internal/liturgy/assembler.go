package liturgy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"lectio/internal/logging"
	"lectio/internal/scripture"
	"lectio/internal/services"
	"lectio/internal/services/feed"
)

// State is the assembler lifecycle state.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is the assembler's current-day cell. Day survives a failed
// refresh so callers keep showing the last good value.
type Snapshot struct {
	State     State          `json:"state"`
	Day       *LiturgicalDay `json:"day,omitempty"`
	Error     string         `json:"error,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
	Archived  bool           `json:"archived,omitempty"`
}

// FeedSource returns the feed item for a date.
type FeedSource interface {
	TodayItem(ctx context.Context, date time.Time) (feed.Item, error)
}

// ReadingsExtractor turns a feed description into readings.
type ReadingsExtractor interface {
	Extract(description string) scripture.MassReadings
}

// SaintLookup finds the saint celebrated on a date.
type SaintLookup interface {
	LookupByFeastDay(date time.Time) (Saint, bool)
}

// DayStore persists assembled days.
type DayStore interface {
	SaveDay(ctx context.Context, day LiturgicalDay) error
	LoadDay(ctx context.Context, date time.Time) (LiturgicalDay, bool, error)
}

// Assembler fetches, classifies and publishes the liturgical day.
type Assembler struct {
	feed      FeedSource
	extractor ReadingsExtractor
	saints    SaintLookup
	store     DayStore
	clock     func() time.Time
	logger    *slog.Logger

	refreshMu sync.Mutex
	current   atomic.Pointer[Snapshot]

	watchMu     sync.Mutex
	watchers    map[int]chan Snapshot
	nextWatcher int
}

// Option customizes an Assembler.
type Option func(*Assembler)

// WithSaints attaches a saints directory.
func WithSaints(saints SaintLookup) Option {
	return func(a *Assembler) {
		a.saints = saints
	}
}

// WithStore archives ready days and serves them when the feed is down.
func WithStore(store DayStore) Option {
	return func(a *Assembler) {
		a.store = store
	}
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) Option {
	return func(a *Assembler) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// NewAssembler constructs an Assembler in the Idle state.
func NewAssembler(source FeedSource, extractor ReadingsExtractor, logger *slog.Logger, opts ...Option) *Assembler {
	if logger == nil {
		logger = logging.NewNop()
	}
	a := &Assembler{
		feed:      source,
		extractor: extractor,
		clock:     time.Now,
		logger:    logging.NewComponentLogger(logger, "liturgy"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	a.current.Store(&Snapshot{State: Idle})
	return a
}

// Current returns the latest snapshot.
func (a *Assembler) Current() Snapshot {
	return *a.current.Load()
}

// Refresh fetches and assembles today's record.
func (a *Assembler) Refresh(ctx context.Context) (LiturgicalDay, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()
	return a.refreshLocked(ctx)
}

// Today returns the cached day when it matches the clock's date, otherwise it
// refreshes. When the refresh fails the stale day, if any, is returned along
// with the error.
func (a *Assembler) Today(ctx context.Context) (LiturgicalDay, error) {
	if day, ok := a.fresh(); ok {
		return day, nil
	}

	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()
	// another caller may have refreshed while we waited
	if day, ok := a.fresh(); ok {
		return day, nil
	}
	day, err := a.refreshLocked(ctx)
	if err != nil {
		if prev := a.Current().Day; prev != nil {
			return *prev, err
		}
		return LiturgicalDay{}, err
	}
	return day, nil
}

func (a *Assembler) fresh() (LiturgicalDay, bool) {
	snap := a.current.Load()
	if snap.Day == nil || snap.State != Ready {
		return LiturgicalDay{}, false
	}
	if !sameDay(snap.Day.Date, a.clock()) {
		return LiturgicalDay{}, false
	}
	return *snap.Day, true
}

func (a *Assembler) refreshLocked(ctx context.Context) (LiturgicalDay, error) {
	prev := a.current.Load()
	a.publish(&Snapshot{State: Loading, Day: prev.Day, UpdatedAt: prev.UpdatedAt})

	now := a.clock()
	date := startOfDay(now)
	ctx = services.WithLiturgicalDate(ctx, date)
	logger := logging.WithContext(ctx, a.logger)

	if a.feed == nil {
		return a.fail(ctx, prev, services.Wrap(services.ErrConfiguration, "liturgy", "refresh", "no feed source configured", nil))
	}

	item, err := a.feed.TodayItem(ctx, date)
	if err != nil {
		if day, ok := a.archived(ctx, date); ok {
			logging.WarnWithContext(logger, "serving archived liturgical day", "archive_fallback",
				logging.Error(err),
				logging.String(logging.FieldImpact, "feed unavailable; showing stored readings"),
			)
			a.publish(&Snapshot{State: Ready, Day: &day, UpdatedAt: now, Archived: true})
			return day, nil
		}
		return a.fail(ctx, prev, err)
	}

	var readings scripture.MassReadings
	if a.extractor != nil {
		readings = a.extractor.Extract(item.Description)
	}

	var saint *Saint
	if a.saints != nil {
		if s, ok := a.saints.LookupByFeastDay(date); ok {
			saint = &s
		}
	}

	day := Assemble(date, item, readings, saint)
	a.publish(&Snapshot{State: Ready, Day: &day, UpdatedAt: now})

	logger.Info("liturgical day ready",
		logging.String(logging.FieldEventType, "liturgy_ready"),
		logging.String("title", day.Title),
		logging.String("season", day.Season.String()),
		logging.String("color", day.Color.String()),
		logging.String("rank", day.Rank.String()),
		logging.Bool("degraded", readings.Degraded),
	)

	if a.store != nil {
		if err := a.store.SaveDay(ctx, day); err != nil {
			logging.WarnWithContext(logger, "failed to archive liturgical day", "archive_save_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "day will not be available offline"),
			)
		}
	}
	return day, nil
}

func (a *Assembler) archived(ctx context.Context, date time.Time) (LiturgicalDay, bool) {
	if a.store == nil || errors.Is(ctx.Err(), context.Canceled) {
		return LiturgicalDay{}, false
	}
	day, ok, err := a.store.LoadDay(ctx, date)
	if err != nil {
		a.logger.Debug("archive lookup failed", logging.Error(err))
		return LiturgicalDay{}, false
	}
	return day, ok
}

func (a *Assembler) fail(ctx context.Context, prev *Snapshot, err error) (LiturgicalDay, error) {
	a.publish(&Snapshot{State: Failed, Day: prev.Day, Error: err.Error(), UpdatedAt: a.clock()})
	logging.ErrorWithContext(logging.WithContext(ctx, a.logger), "liturgical day refresh failed", "liturgy_failed",
		logging.Error(err),
		logging.Bool("previous_retained", prev.Day != nil),
		logging.String(logging.FieldErrorHint, "check feed url and network connectivity"),
	)
	return LiturgicalDay{}, err
}

func (a *Assembler) publish(s *Snapshot) {
	a.current.Store(s)

	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	for _, ch := range a.watchers {
		// keep only the newest snapshot for slow receivers
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- *s:
		default:
		}
	}
}

// Subscribe returns a channel that receives every snapshot published after
// the call, and a cancel func that closes it. A receiver that falls behind
// sees only the latest snapshot.
func (a *Assembler) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	a.watchMu.Lock()
	if a.watchers == nil {
		a.watchers = make(map[int]chan Snapshot)
	}
	id := a.nextWatcher
	a.nextWatcher++
	a.watchers[id] = ch
	a.watchMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			a.watchMu.Lock()
			delete(a.watchers, id)
			a.watchMu.Unlock()
			close(ch)
		})
	}
}
