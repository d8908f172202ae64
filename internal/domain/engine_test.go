package domain

import (
	"context"
	"time"

	"github.com/questx-lab/progression/internal/domain/scope"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/testutil"
	"github.com/questx-lab/progression/pkg/xcontext"
)

// testEngine wires every domain on the database of ctx, the same way the srv
// command does.
type testEngine struct {
	userRepo        repository.UserRepository
	ledgerRepo      repository.LedgerRepository
	streakRepo      repository.StreakRepository
	achievementRepo repository.AchievementRepository
	rewardRepo      repository.RewardRepository
	challengeRepo   repository.ChallengeRepository
	entryRepo       repository.EntryRepository
	patternRepo     repository.PatternRepository
	insightRepo     repository.InsightRepository

	jobGuard  *scope.JobGuard
	publisher *testutil.MockPublisher

	ledger      *ledgerDomain
	streak      *streakDomain
	achievement *achievementDomain
	reward      *rewardDomain
	intake      *intakeDomain
	pattern     *patternDomain
	insight     *insightDomain
	catalog     *catalogDomain
}

func newTestEngine() *testEngine {
	e := &testEngine{
		userRepo:        repository.NewUserRepository(),
		ledgerRepo:      repository.NewLedgerRepository(),
		streakRepo:      repository.NewStreakRepository(),
		achievementRepo: repository.NewAchievementRepository(),
		rewardRepo:      repository.NewRewardRepository(),
		challengeRepo:   repository.NewChallengeRepository(),
		entryRepo:       repository.NewEntryRepository(),
		patternRepo:     repository.NewPatternRepository(),
		insightRepo:     repository.NewInsightRepository(),
		jobGuard:        scope.NewJobGuard(nil, time.Minute),
		publisher:       &testutil.MockPublisher{},
	}

	scopeManager := scope.NewManager(nil)
	e.ledger = NewLedgerDomain(e.ledgerRepo, e.userRepo, scopeManager)
	e.streak = NewStreakDomain(e.streakRepo, scopeManager)
	e.achievement = NewAchievementDomain(e.achievementRepo, e.ledgerRepo, e.streakRepo,
		e.entryRepo, e.userRepo, e.ledger, scopeManager)
	e.reward = NewRewardDomain(e.rewardRepo, e.challengeRepo, e.ledgerRepo, e.streakRepo,
		e.entryRepo, e.userRepo, e.ledger, scopeManager)
	e.intake = NewIntakeDomain(e.userRepo, e.entryRepo, e.ledger, e.streak,
		e.achievement, e.reward, scopeManager, e.publisher)
	e.insight = NewInsightDomain(e.insightRepo, e.patternRepo, e.entryRepo, e.jobGuard)
	e.pattern = NewPatternDomain(e.patternRepo, e.entryRepo, e.insight, e.jobGuard)
	e.catalog = NewCatalogDomain(e.achievementRepo, e.rewardRepo, e.challengeRepo)
	return e
}

// at fixes the clock of ctx.
func at(ctx context.Context, t time.Time) context.Context {
	return xcontext.WithClock(ctx, func() time.Time { return t })
}

func asUser(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}

	return t.Add(12 * time.Hour)
}
