package jobs

import (
	"context"
	"time"

	"flitz/internal/logger"
)

// Job is one periodically executed unit of work.
type Job interface {
	Name() string
	Interval() time.Duration
	Run(ctx context.Context) error
}

// Scheduler runs registered jobs on independent cadences. Each run gets up
// to three attempts with growing backoff; a failed run waits for the next
// tick.
type Scheduler struct {
	jobs []Job
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Register(job Job) {
	s.jobs = append(s.jobs, job)
	logger.Debug("job registered", "job", job.Name())
}

// Start launches one goroutine per job. Jobs stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	if len(s.jobs) == 0 {
		logger.Warn("no jobs registered, scheduler idle")
		return
	}
	logger.Info("starting job scheduler", "jobs", len(s.jobs))
	for _, job := range s.jobs {
		go s.runLoop(ctx, job)
	}
}

func (s *Scheduler) runLoop(ctx context.Context, job Job) {
	ticker := time.NewTicker(job.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("job stopped", "job", job.Name())
			return
		case <-ticker.C:
			s.runWithRetry(ctx, job)
		}
	}
}

func (s *Scheduler) runWithRetry(ctx context.Context, job Job) {
	backoff := []time.Duration{0, 30 * time.Second, 2 * time.Minute}
	for attempt, delay := range backoff {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
		started := time.Now()
		err := job.Run(ctx)
		if err == nil {
			logger.Info("job run completed", "job", job.Name(), "duration", time.Since(started))
			return
		}
		logger.Error("job run failed", "job", job.Name(), "attempt", attempt+1, "error", err)
	}
}
