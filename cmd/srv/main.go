package main

import (
	"context"
	"os"

	"github.com/questx-lab/progression/config"
	"github.com/questx-lab/progression/internal/domain"
	"github.com/questx-lab/progression/internal/domain/scope"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/logger"
	"github.com/questx-lab/progression/pkg/pubsub"
	"github.com/questx-lab/progression/pkg/router"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/questx-lab/progression/pkg/xredis"
	"github.com/urfave/cli/v2"
)

type srv struct {
	app *cli.App
	ctx context.Context

	redisClient  xredis.Client
	publisher    pubsub.Publisher
	scopeManager *scope.Manager
	jobGuard     *scope.JobGuard

	userRepo        repository.UserRepository
	ledgerRepo      repository.LedgerRepository
	streakRepo      repository.StreakRepository
	achievementRepo repository.AchievementRepository
	rewardRepo      repository.RewardRepository
	challengeRepo   repository.ChallengeRepository
	entryRepo       repository.EntryRepository
	patternRepo     repository.PatternRepository
	insightRepo     repository.InsightRepository

	ledgerDomain      domain.LedgerDomain
	streakDomain      domain.StreakDomain
	achievementDomain domain.AchievementDomain
	rewardDomain      domain.RewardDomain
	intakeDomain      domain.IntakeDomain
	patternDomain     domain.PatternDomain
	insightDomain     domain.InsightDomain
	catalogDomain     domain.CatalogDomain

	router *router.Router
}

var server srv

func main() {
	server.loadApp()
	if err := server.app.Run(os.Args); err != nil {
		panic(err)
	}
}

// before loads the configurations and the logger into the root context. It
// runs before every command.
func (s *srv) before(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	return nil
}
