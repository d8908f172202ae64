package cron

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/progression/internal/domain"
	"github.com/questx-lab/progression/internal/domain/insight"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

// PatternMiningCronJob analyzes the patterns of every user who had an entry
// inside the configured timeframe.
type PatternMiningCronJob struct {
	entryRepo     repository.EntryRepository
	patternDomain domain.PatternDomain
	interval      time.Duration
}

func NewPatternMiningCronJob(
	entryRepo repository.EntryRepository,
	patternDomain domain.PatternDomain,
	interval time.Duration,
) *PatternMiningCronJob {
	return &PatternMiningCronJob{
		entryRepo:     entryRepo,
		patternDomain: patternDomain,
		interval:      interval,
	}
}

func (job *PatternMiningCronJob) Do(ctx context.Context) {
	cfg := xcontext.Configs(ctx).Cron
	timeframe := entity.Timeframe(cfg.MiningTimeframe)
	window, err := insight.WindowOf(timeframe, xcontext.Now(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Invalid mining timeframe %s: %v", cfg.MiningTimeframe, err)
		return
	}

	userIDs, err := job.entryRepo.GetActiveUserIDs(ctx, window.Start)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active users: %v", err)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	if cfg.MiningConcurrency > 0 {
		g.SetLimit(cfg.MiningConcurrency)
	}

	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			userCtx := xcontext.WithRequestUserID(gctx, userID)
			_, err := job.patternDomain.AnalyzePatterns(userCtx, &model.AnalyzePatternsRequest{
				Timeframe: string(timeframe),
			})
			if err != nil {
				if errors.Is(err, errorx.New(errorx.TooManyRequests, "")) {
					xcontext.Logger(ctx).Debugf("Skip user %s, an analysis is running", userID)
					return nil
				}

				// A failing user does not stop the others.
				xcontext.Logger(ctx).Warnf("Cannot analyze patterns of user %s: %v", userID, err)
			}

			return nil
		})
	}

	_ = g.Wait()
	xcontext.Logger(ctx).Infof("Analyzed patterns of %d users", len(userIDs))
}

func (job *PatternMiningCronJob) RunNow() bool {
	return false
}

func (job *PatternMiningCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
