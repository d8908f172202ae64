package cron

import (
	"context"
	"time"

	"github.com/questx-lab/progression/internal/domain"
	"github.com/questx-lab/progression/pkg/xcontext"
)

// StreakSweepCronJob marks the streaks which missed yesterday as inactive.
type StreakSweepCronJob struct {
	streakDomain domain.StreakDomain
	interval     time.Duration
}

func NewStreakSweepCronJob(streakDomain domain.StreakDomain, interval time.Duration) *StreakSweepCronJob {
	return &StreakSweepCronJob{streakDomain: streakDomain, interval: interval}
}

func (job *StreakSweepCronJob) Do(ctx context.Context) {
	count, err := job.streakDomain.DeactivateStale(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot deactivate stale streaks: %v", err)
		return
	}

	if count > 0 {
		xcontext.Logger(ctx).Infof("Deactivated %d stale streaks", count)
	}
}

func (job *StreakSweepCronJob) RunNow() bool {
	return true
}

func (job *StreakSweepCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
