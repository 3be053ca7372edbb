package scheduler

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Pruner drops expired entries and reports how many remain.
type Pruner interface {
	Prune() int
	Len() int
}

// Gauge receives the live session count after each sweep.
type Gauge interface {
	SetSessions(n int)
}

// Scheduler periodically sweeps idle sessions out of the store.
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     Pruner
	gauge     Gauge
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. gauge may be nil.
func New(store Pruner, interval time.Duration, gauge Gauge, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		gauge:     gauge,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = time.Minute
	}

	if _, err := s.scheduler.Every(interval).Do(s.Sweep); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Sweep prunes the store once.
func (s *Scheduler) Sweep() {
	removed := s.store.Prune()
	remaining := s.store.Len()
	if s.gauge != nil {
		s.gauge.SetSessions(remaining)
	}
	if removed > 0 {
		s.logger.Info("pruned idle sessions", "removed", removed, "remaining", remaining)
	}
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
