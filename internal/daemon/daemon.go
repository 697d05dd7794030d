package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"lectio/internal/archive"
	"lectio/internal/artwork"
	"lectio/internal/config"
	"lectio/internal/devotion"
	"lectio/internal/liturgy"
	"lectio/internal/logging"
	"lectio/internal/scripture"
)

const defaultRefreshInterval = time.Hour

// Service is the slice of the devotion facade the daemon serves.
// devotion.Service satisfies it.
type Service interface {
	GetTodaysLiturgy(ctx context.Context) (liturgy.LiturgicalDay, error)
	LiturgySnapshot() liturgy.Snapshot
	WatchLiturgy() (<-chan liturgy.Snapshot, func())
	GetScriptureText(ctx context.Context, citation string) (scripture.Reading, error)
	SearchScripture(ctx context.Context, query string) ([]scripture.Reading, error)
	GenerateArt(ctx context.Context, req devotion.ArtRequest) (artwork.Image, error)
	SaintsOn(date time.Time) []liturgy.Saint
	History(ctx context.Context, limit int) ([]archive.DaySummary, error)
	Status() devotion.Status
	ClearScriptureCache() int
}

// Daemon serves the devotion facade and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	svc    Service
	logger *slog.Logger
	clock  func() time.Time

	lockPath string
	lock     *flock.Flock
	api      *apiServer
	interval time.Duration

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	PID          int
	Address      string
	ArchivePath  string
	LockFilePath string
	Service      devotion.Status
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithRefreshInterval overrides how often today's liturgy is re-checked.
func WithRefreshInterval(interval time.Duration) Option {
	return func(d *Daemon) {
		if interval > 0 {
			d.interval = interval
		}
	}
}

// WithClock overrides time.Now for date defaults in handlers.
func WithClock(clock func() time.Time) Option {
	return func(d *Daemon) {
		if clock != nil {
			d.clock = clock
		}
	}
}

// New constructs a daemon around svc.
func New(cfg *config.Config, svc Service, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || svc == nil {
		return nil, errors.New("daemon requires config and service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		svc:      svc,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		clock:    time.Now,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		interval: defaultRefreshInterval,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	d.api = newAPIServer(cfg.Paths.APIBind, svc, d, logger)
	return d, nil
}

// Start acquires the lock, starts the API server and the refresh loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}
	if err := os.MkdirAll(d.cfg.Paths.DataDir, 0o755); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lectio instance is already serving this data directory")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.api.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.running.Store(true)

	d.wg.Add(1)
	go d.refreshLoop(runCtx)

	d.logger.Info("lectio daemon started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.api.address()),
	)
	return nil
}

// Stop shuts down the API server and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("lectio daemon stopped")
}

// Address returns the API listen address once started.
func (d *Daemon) Address() string {
	return d.api.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		Address:      d.api.address(),
		ArchivePath:  d.cfg.ArchivePath(),
		LockFilePath: d.lockPath,
		Service:      d.svc.Status(),
	}
}

func (d *Daemon) refreshLoop(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	d.warm(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.warm(ctx)
		}
	}
}

func (d *Daemon) warm(ctx context.Context) {
	if _, err := d.svc.GetTodaysLiturgy(ctx); err != nil && ctx.Err() == nil {
		logging.WarnWithContext(d.logger, "scheduled liturgy refresh failed", "liturgy_refresh_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "API serves the last good day until the next attempt"),
			logging.String(logging.FieldErrorHint, "check the feed url and network"),
		)
	}
}
