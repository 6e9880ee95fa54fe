package worker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Scheduler runs recurring background work on cron schedules. It is a thin
// wrapper over robfig/cron so the rest of the codebase never touches the
// cron API directly.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a stopped scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Add registers fn to run on the given cron expression (standard 5-field
// format, e.g. "0 3 * * *").
func (s *Scheduler) Add(spec string, fn func()) error {
	if _, err := s.cron.AddFunc(spec, fn); err != nil {
		return fmt.Errorf("failed to register cron schedule %q: %w", spec, err)
	}
	return nil
}

// Start begins running registered schedules in their own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running entries to finish, up to the
// context deadline.
func (s *Scheduler) Stop(ctx context.Context) {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
}
