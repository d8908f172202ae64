package main

import (
	"github.com/questx-lab/progression/internal/domain"
	"github.com/questx-lab/progression/internal/domain/scope"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/migration"
	"github.com/questx-lab/progression/pkg/kafka"
	"github.com/questx-lab/progression/pkg/xcontext"
	"github.com/questx-lab/progression/pkg/xredis"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	case "sqlite":
		dialector = sqlite.Open(cfg.SqlitePath)
	default:
		panic("unsupported database driver " + cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := migration.AutoMigrate(s.ctx); err != nil {
		panic(err)
	}
}

// loadRedisClient connects to redis only if an address is configured. The
// engine works on a single instance without it.
func (s *srv) loadRedisClient() {
	if xcontext.Configs(s.ctx).Redis.Addr == "" {
		xcontext.Logger(s.ctx).Infof("Redis is not configured, use in-process user scopes only")
		return
	}

	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

// loadPublisher creates the unlock notification publisher if kafka is
// configured.
func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx).Kafka
	if len(cfg.Addrs) == 0 {
		xcontext.Logger(s.ctx).Infof("Kafka is not configured, unlock notifications are disabled")
		return
	}

	publisher, err := kafka.NewPublisher(cfg.ClientID, cfg.Addrs)
	if err != nil {
		panic(err)
	}
	s.publisher = publisher
}

func (s *srv) loadScopes() {
	s.scopeManager = scope.NewManager(s.redisClient)
	s.jobGuard = scope.NewJobGuard(s.redisClient, xcontext.Configs(s.ctx).Redis.JobTTL.Std())
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.ledgerRepo = repository.NewLedgerRepository()
	s.streakRepo = repository.NewStreakRepository()
	s.achievementRepo = repository.NewAchievementRepository()
	s.rewardRepo = repository.NewRewardRepository()
	s.challengeRepo = repository.NewChallengeRepository()
	s.entryRepo = repository.NewEntryRepository()
	s.patternRepo = repository.NewPatternRepository()
	s.insightRepo = repository.NewInsightRepository()
}

func (s *srv) loadDomains() {
	s.ledgerDomain = domain.NewLedgerDomain(s.ledgerRepo, s.userRepo, s.scopeManager)
	s.streakDomain = domain.NewStreakDomain(s.streakRepo, s.scopeManager)
	s.achievementDomain = domain.NewAchievementDomain(s.achievementRepo, s.ledgerRepo, s.streakRepo,
		s.entryRepo, s.userRepo, s.ledgerDomain, s.scopeManager)
	s.rewardDomain = domain.NewRewardDomain(s.rewardRepo, s.challengeRepo, s.ledgerRepo, s.streakRepo,
		s.entryRepo, s.userRepo, s.ledgerDomain, s.scopeManager)
	s.intakeDomain = domain.NewIntakeDomain(s.userRepo, s.entryRepo, s.ledgerDomain, s.streakDomain,
		s.achievementDomain, s.rewardDomain, s.scopeManager, s.publisher)
	s.insightDomain = domain.NewInsightDomain(s.insightRepo, s.patternRepo, s.entryRepo, s.jobGuard)
	s.patternDomain = domain.NewPatternDomain(s.patternRepo, s.entryRepo, s.insightDomain, s.jobGuard)
	s.catalogDomain = domain.NewCatalogDomain(s.achievementRepo, s.rewardRepo, s.challengeRepo)
}

// loadAll prepares every dependency of the engine.
func (s *srv) loadAll() {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadScopes()
	s.loadRepos()
}
