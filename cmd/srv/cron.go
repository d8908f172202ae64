package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/questx-lab/progression/internal/domain/cron"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadAll()
	s.loadDomains()

	cfg := xcontext.Configs(s.ctx).Cron
	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(cron.NewStreakSweepCronJob(s.streakDomain, cfg.StreakSweepInterval.Std()))
	cronJobManager.Register(cron.NewPatternMiningCronJob(s.entryRepo, s.patternDomain, cfg.MiningInterval.Std()))

	ctx, stop := signal.NotifyContext(s.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		cronJobManager.Cancel(s.ctx)
	}()

	cronJobManager.Start(ctx)
	return nil
}
