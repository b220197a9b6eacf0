package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/jon4hz/mealtrack/internal/cache"
	"github.com/jon4hz/mealtrack/internal/config"
	"github.com/jon4hz/mealtrack/internal/database"
	"github.com/jon4hz/mealtrack/internal/notify/email"
	"github.com/jon4hz/mealtrack/internal/scheduler"
)

// Notifier delivers meal reminders.
type Notifier interface {
	SendReminder(ctx context.Context, reminder email.Reminder) error
}

// Tracker implements accounts, sessions, the meal ledger and everything derived from it.
// All operations are scoped to the user id they receive, which the caller resolves from a session.
type Tracker struct {
	cfg        *config.Config
	db         database.DB
	sessions   *cache.SessionCache
	notifier   Notifier
	scheduler  *scheduler.Scheduler
	now        func() time.Time
	iterations int
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithNotifier replaces the email notifier used for reminders.
func WithNotifier(n Notifier) Option {
	return func(t *Tracker) {
		t.notifier = n
	}
}

// WithPasswordIterations sets the PBKDF2 iteration count for newly derived hashes.
func WithPasswordIterations(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.iterations = n
		}
	}
}

// New creates a new Tracker and registers its background jobs.
func New(cfg *config.Config, db database.DB, opts ...Option) (*Tracker, error) {
	sched, err := scheduler.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	cacheCfg := cfg.Cache
	if cacheCfg == nil {
		cacheCfg = &config.CacheConfig{Type: config.CacheTypeMemory}
	}

	t := &Tracker{
		cfg:        cfg,
		db:         db,
		sessions:   cache.NewSessionCache(cacheCfg, cfg.CacheTTL()),
		scheduler:  sched,
		now:        time.Now,
		iterations: DefaultPasswordIterations,
	}

	if cfg.RemindersEnabled() {
		t.notifier = email.New(cfg.Email)
	}

	for _, opt := range opts {
		opt(t)
	}

	if err := t.setupJobs(); err != nil {
		return nil, fmt.Errorf("failed to setup jobs: %w", err)
	}

	return t, nil
}

// Location returns the timezone used to interpret local client times and calendar dates.
func (t *Tracker) Location() *time.Location {
	return t.cfg.Location()
}
