package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	mathUtil "github.com/pkg/math"
	"github.com/questx-lab/progression/internal/domain/scope"
	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/internal/model"
	"github.com/questx-lab/progression/internal/repository"
	"github.com/questx-lab/progression/pkg/dateutil"
	"github.com/questx-lab/progression/pkg/enum"
	"github.com/questx-lab/progression/pkg/errorx"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/gorm"
)

type StreakDomain interface {
	GetStreaks(context.Context, *model.GetStreaksRequest) (*model.GetStreaksResponse, error)

	// RecordActivity moves the streak of the user forward with an activity at
	// the given time. The calendar day of the activity is decided by the
	// engine timezone.
	RecordActivity(ctx context.Context, userID string, streakType entity.StreakType, targetID string, at time.Time) (*entity.Streak, error)

	// DeactivateStale marks streaks without activity since yesterday as
	// inactive. It returns the number of deactivated streaks.
	DeactivateStale(ctx context.Context) (int64, error)
}

type streakDomain struct {
	streakRepo   repository.StreakRepository
	scopeManager *scope.Manager
}

func NewStreakDomain(streakRepo repository.StreakRepository, scopeManager *scope.Manager) *streakDomain {
	return &streakDomain{streakRepo: streakRepo, scopeManager: scopeManager}
}

func (d *streakDomain) GetStreaks(
	ctx context.Context, req *model.GetStreaksRequest,
) (*model.GetStreaksResponse, error) {
	streaks, err := d.streakRepo.GetByUserID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get streaks: %v", err)
		return nil, errorx.Unknown
	}

	loc := xcontext.Configs(ctx).Progression.Location()
	today := dateutil.DayKey(xcontext.Now(ctx), loc)
	resp := &model.GetStreaksResponse{Streaks: []model.Streak{}}
	for i := range streaks {
		atRisk, isBroken := streakStatus(&streaks[i], today)
		resp.Streaks = append(resp.Streaks, model.ConvertStreak(&streaks[i], atRisk, isBroken))
	}

	return resp, nil
}

func (d *streakDomain) RecordActivity(
	ctx context.Context, userID string, streakType entity.StreakType, targetID string, at time.Time,
) (*entity.Streak, error) {
	if !enum.IsValid(streakType) {
		return nil, errorx.New(errorx.BadRequest, "Invalid streak type %s", streakType)
	}

	day := dateutil.DayKey(at, xcontext.Configs(ctx).Progression.Location())

	var result *entity.Streak
	err := d.scopeManager.Do(ctx, userID, func(ctx context.Context) error {
		streak, err := d.streakRepo.Get(ctx, userID, streakType, targetID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get streak: %v", err)
			return errorx.Unknown
		}

		if streak == nil {
			streak = &entity.Streak{
				Base:             entity.Base{ID: uuid.NewString()},
				UserID:           userID,
				StreakType:       streakType,
				TargetID:         targetID,
				CurrentStreak:    1,
				LongestStreak:    1,
				LastActivityDate: day,
				StreakStartDate:  day,
				IsActive:         true,
			}

			created, err := d.streakRepo.CreateIfNotExists(ctx, streak)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot create streak: %v", err)
				return errorx.Unknown
			}

			if created {
				result = streak
				return nil
			}

			// Another instance created the streak in the meantime.
			streak, err = d.streakRepo.Get(ctx, userID, streakType, targetID)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot get streak: %v", err)
				return errorx.Unknown
			}
		}

		changed, err := advanceStreak(streak, day)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot advance streak %s: %v", streak.ID, err)
			return errorx.Unknown
		}

		if changed {
			if err := d.streakRepo.Update(ctx, streak); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot update streak %s: %v", streak.ID, err)
				return errorx.Unknown
			}
		}

		result = streak
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (d *streakDomain) DeactivateStale(ctx context.Context) (int64, error) {
	loc := xcontext.Configs(ctx).Progression.Location()
	yesterday, err := dateutil.AddDays(dateutil.DayKey(xcontext.Now(ctx), loc), -1)
	if err != nil {
		return 0, err
	}

	n, err := d.streakRepo.DeactivateBefore(ctx, yesterday)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot deactivate stale streaks: %v", err)
		return 0, errorx.Unknown
	}

	return n, nil
}

// advanceStreak applies an activity of day to the streak. It returns false if
// the streak does not change, which happens for a second activity of the same
// day and for activities older than the last one.
func advanceStreak(streak *entity.Streak, day string) (bool, error) {
	gap, err := dateutil.DaysBetween(streak.LastActivityDate, day)
	if err != nil {
		return false, err
	}

	switch {
	case gap <= 0:
		return false, nil

	case gap == 1:
		streak.CurrentStreak++
		streak.LongestStreak = mathUtil.MaxInt(streak.LongestStreak, streak.CurrentStreak)

	default:
		streak.CurrentStreak = 1
		streak.StreakStartDate = day
	}

	streak.LastActivityDate = day
	streak.IsActive = true
	return true, nil
}

// streakStatus computes whether the streak is at risk or already broken on
// today, without writing anything.
func streakStatus(streak *entity.Streak, today string) (atRisk bool, isBroken bool) {
	gap, err := dateutil.DaysBetween(streak.LastActivityDate, today)
	if err != nil {
		return false, true
	}

	return gap == 1, gap > 1
}

// effectiveStreak is the current streak seen on day. A broken streak counts
// as zero.
func effectiveStreak(streak *entity.Streak, day string) int {
	if _, isBroken := streakStatus(streak, day); isBroken {
		return 0
	}

	return streak.CurrentStreak
}
