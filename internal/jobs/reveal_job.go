package jobs

import (
	"context"
	"time"

	"flitz/internal/service"
)

// RevealJob drives the scheduled reveal-phase pass. Mutual exclusion across
// instances lives inside the engine's redis lease, not here.
type RevealJob struct {
	engine   *service.RevealEngine
	interval time.Duration
}

func NewRevealJob(engine *service.RevealEngine, interval time.Duration) *RevealJob {
	return &RevealJob{engine: engine, interval: interval}
}

func (j *RevealJob) Name() string            { return "reveal-phase" }
func (j *RevealJob) Interval() time.Duration { return j.interval }

func (j *RevealJob) Run(ctx context.Context) error {
	return j.engine.RunPass(ctx)
}
