package domain

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/progression/internal/domain/leveling"
	"github.com/questx-lab/progression/internal/domain/requirement"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/dateutil"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/gorm"
)

// userMetrics reads the state of one user at one moment for requirement
// evaluation. The ledger is read on every call because awards applied during
// an evaluation change it. Streaks are read once.
type userMetrics struct {
	userID string
	day    string

	ledgerRepo repository.LedgerRepository
	streakRepo repository.StreakRepository
	entryRepo  repository.EntryRepository
	userRepo   repository.UserRepository

	streaks []entity.Streak
}

// metricsLoader creates the metrics of a user for requirement evaluation.
type metricsLoader struct {
	ledgerRepo repository.LedgerRepository
	streakRepo repository.StreakRepository
	entryRepo  repository.EntryRepository
	userRepo   repository.UserRepository
}

func newMetricsLoader(
	ledgerRepo repository.LedgerRepository,
	streakRepo repository.StreakRepository,
	entryRepo repository.EntryRepository,
	userRepo repository.UserRepository,
) *metricsLoader {
	return &metricsLoader{
		ledgerRepo: ledgerRepo,
		streakRepo: streakRepo,
		entryRepo:  entryRepo,
		userRepo:   userRepo,
	}
}

func (l *metricsLoader) load(ctx context.Context, userID string, at time.Time) *userMetrics {
	loc := xcontext.Configs(ctx).Progression.Location()
	return &userMetrics{
		userID:     userID,
		day:        dateutil.DayKey(at, loc),
		ledgerRepo: l.ledgerRepo,
		streakRepo: l.streakRepo,
		entryRepo:  l.entryRepo,
		userRepo:   l.userRepo,
	}
}

func (m *userMetrics) TotalXP(ctx context.Context) (int64, error) {
	ledger, err := m.ledgerRepo.Get(ctx, m.userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, err
	}

	return ledger.TotalXP, nil
}

func (m *userMetrics) Level(ctx context.Context) (int, error) {
	totalXP, err := m.TotalXP(ctx)
	if err != nil {
		return 0, err
	}

	return leveling.Derive(totalXP).Level, nil
}

func (m *userMetrics) StreakValue(
	ctx context.Context, streakType entity.StreakType, targetID string,
) (int, error) {
	if m.streaks == nil {
		streaks, err := m.streakRepo.GetByUserID(ctx, m.userID)
		if err != nil {
			return 0, err
		}
		m.streaks = append([]entity.Streak{}, streaks...)
	}

	best := 0
	for i := range m.streaks {
		s := &m.streaks[i]
		if s.StreakType != streakType {
			continue
		}

		if targetID != "" && s.TargetID != targetID {
			continue
		}

		if v := effectiveStreak(s, m.day); v > best {
			best = v
		}
	}

	return best, nil
}

func (m *userMetrics) Count(
	ctx context.Context, domain entity.DomainType, window requirement.Window,
) (int64, error) {
	filter := repository.CountEntryFilter{UserID: m.userID, Domain: domain}
	if window == requirement.WindowDay {
		filter.Day = m.day
	}

	return m.entryRepo.Count(ctx, filter)
}

func (m *userMetrics) RegisteredAt(ctx context.Context) (time.Time, error) {
	user, err := m.userRepo.GetByID(ctx, m.userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}

		return time.Time{}, err
	}

	return user.RegisteredAt, nil
}
