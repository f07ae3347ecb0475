package jobs

import (
	"context"
	"fmt"
	"time"

	"flitz/internal/logger"
	"flitz/internal/service"
)

// ChronoWaveJob runs one batch-matching pass over every populated bucket.
// Buckets fail independently; the job only errors when the bucket listing
// itself fails.
type ChronoWaveJob struct {
	matcher  *service.ChronoWaveMatcher
	interval time.Duration
}

func NewChronoWaveJob(matcher *service.ChronoWaveMatcher, interval time.Duration) *ChronoWaveJob {
	return &ChronoWaveJob{matcher: matcher, interval: interval}
}

func (j *ChronoWaveJob) Name() string            { return "chronowave" }
func (j *ChronoWaveJob) Interval() time.Duration { return j.interval }

func (j *ChronoWaveJob) Run(ctx context.Context) error {
	buckets, err := j.matcher.PopulatedBuckets()
	if err != nil {
		return fmt.Errorf("listing populated buckets: %w", err)
	}

	var failed int
	for _, key := range buckets {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := j.matcher.Run(key); err != nil {
			failed++
			logger.Error("chronowave: bucket pass failed", "bucket", key, "error", err)
		}
	}
	logger.Info("chronowave pass completed", "buckets", len(buckets), "failed", failed)
	return nil
}
