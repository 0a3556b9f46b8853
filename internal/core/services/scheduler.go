package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/threadsense/internal/core/domain"
	"github.com/custodia-labs/threadsense/internal/core/ports/driven"
	"github.com/custodia-labs/threadsense/internal/core/ports/driving"
	"github.com/custodia-labs/threadsense/internal/logger"
)

var _ driving.Scheduler = (*Scheduler)(nil)

// Default maintenance schedules.
const (
	DefaultSweepSchedule = "@every 1m"
	DefaultPruneSchedule = "@daily"
)

// SchedulerConfig configures background maintenance.
type SchedulerConfig struct {
	// SweepSchedule is the cron spec for session expiry sweeps.
	SweepSchedule string

	// PruneSchedule is the cron spec for history pruning.
	PruneSchedule string

	// HistoryRetention is how long history rows are kept. Zero disables pruning.
	HistoryRetention time.Duration
}

// SchedulerConfigFromSettings maps application settings to scheduler config.
func SchedulerConfigFromSettings(s *domain.AppSettings) SchedulerConfig {
	cfg := SchedulerConfig{SweepSchedule: s.Session.SweepSchedule}
	if s.History.Enabled {
		cfg.HistoryRetention = s.History.Retention
	}
	return cfg
}

// Scheduler runs session sweeps and history pruning on cron schedules.
type Scheduler struct {
	config   SchedulerConfig
	sessions driven.SessionStore
	history  driven.HistoryStore
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
	stopCh  chan struct{}
}

// NewScheduler creates a scheduler. The history store may be nil.
func NewScheduler(config SchedulerConfig, sessions driven.SessionStore, history driven.HistoryStore) *Scheduler {
	if config.SweepSchedule == "" {
		config.SweepSchedule = DefaultSweepSchedule
	}
	if config.PruneSchedule == "" {
		config.PruneSchedule = DefaultPruneSchedule
	}
	return &Scheduler{
		config:   config,
		sessions: sessions,
		history:  history,
		now:      time.Now,
	}
}

// Start registers the jobs and blocks until Stop is called or ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(s.config.SweepSchedule, func() { s.SweepSessions(ctx) }); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("schedule session sweep %q: %w", s.config.SweepSchedule, err)
	}
	if s.history != nil && s.config.HistoryRetention > 0 {
		if _, err := c.AddFunc(s.config.PruneSchedule, func() { s.PruneHistory(ctx) }); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("schedule history prune %q: %w", s.config.PruneSchedule, err)
		}
	}
	s.cron = c
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	logger.Debug("Scheduler started: sweep=%s prune=%s", s.config.SweepSchedule, s.config.PruneSchedule)
	c.Start()

	select {
	case <-ctx.Done():
		s.halt()
		return ctx.Err()
	case <-stopCh:
		return nil
	}
}

// Stop shuts the scheduler down and waits for running jobs.
func (s *Scheduler) Stop() error {
	s.halt()
	return nil
}

func (s *Scheduler) halt() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	c := s.cron
	s.mu.Unlock()

	<-c.Stop().Done()
}

// SweepSessions removes expired sessions once.
func (s *Scheduler) SweepSessions(ctx context.Context) int {
	n, err := s.sessions.Sweep(ctx)
	if err != nil {
		logger.Warn("Session sweep failed: %v", err)
		return 0
	}
	if n > 0 {
		logger.Debug("Swept %d expired sessions", n)
	}
	return n
}

// PruneHistory deletes history rows older than the retention once.
func (s *Scheduler) PruneHistory(ctx context.Context) int {
	if s.history == nil || s.config.HistoryRetention <= 0 {
		return 0
	}
	n, err := s.history.Prune(ctx, s.now().Add(-s.config.HistoryRetention))
	if err != nil {
		logger.Warn("History prune failed: %v", err)
		return 0
	}
	if n > 0 {
		logger.Debug("Pruned %d history records", n)
	}
	return n
}
