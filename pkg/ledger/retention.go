package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner deletes entries older than the retention period.
type Pruner struct {
	storage Storage
	days    int
	now     func() time.Time
	logger  *slog.Logger
}

// NewPruner creates a pruner keeping days of history. Zero days disables
// pruning.
func NewPruner(storage Storage, days int) *Pruner {
	return &Pruner{
		storage: storage,
		days:    days,
		now:     time.Now,
		logger:  slog.Default().With("component", "ledger.retention"),
	}
}

// Cutoff returns the creation time before which entries are removed.
func (p *Pruner) Cutoff() time.Time {
	return p.now().AddDate(0, 0, -p.days)
}

// Prune deletes expired entries and returns how many were removed.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.days <= 0 {
		return 0, nil
	}

	cutoff := p.Cutoff()
	deleted, err := p.storage.Prune(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage entries: %w", err)
	}

	p.logger.Info("usage entries pruned",
		"cutoff", cutoff.UTC().Format(time.RFC3339),
		"deleted_count", deleted,
	)
	return deleted, nil
}

// Scheduler runs a Pruner on a cron schedule.
type Scheduler struct {
	pruner   *Pruner
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *slog.Logger
	running  bool
}

// NewScheduler creates a scheduler for a standard 5-field cron expression
// such as "0 3 * * *" (daily at 3 AM). Descriptors like "@daily" are
// accepted too.
func NewScheduler(pruner *Pruner, schedule string) *Scheduler {
	return &Scheduler{
		pruner:   pruner,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "ledger.scheduler"),
	}
}

// Start schedules pruning until ctx is cancelled or Stop is called. An empty
// schedule or a pruner without retention does nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if s.schedule == "" || s.pruner.days <= 0 {
		s.logger.Info("usage retention disabled, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}
	if _, err := s.cron.AddFunc(s.schedule, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule pruning: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("retention scheduler started",
		"schedule", s.schedule,
		"retention_days", s.pruner.days,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

func (s *Scheduler) run(ctx context.Context) {
	if _, err := s.pruner.Prune(ctx); err != nil {
		s.logger.Error("scheduled pruning failed", "error", err)
	}
}

// Stop stops the scheduler and waits for a running prune to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("retention scheduler stopped")
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled prune, or nil when not running.
func (s *Scheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
