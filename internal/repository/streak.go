package repository

import (
	"context"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type StreakRepository interface {
	Get(ctx context.Context, userID string, streakType entity.StreakType, targetID string) (*entity.Streak, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Streak, error)
	CreateIfNotExists(ctx context.Context, data *entity.Streak) (bool, error)
	Update(ctx context.Context, data *entity.Streak) error
	DeactivateBefore(ctx context.Context, day string) (int64, error)
}

type streakRepository struct{}

func NewStreakRepository() *streakRepository {
	return &streakRepository{}
}

func (r *streakRepository) Get(
	ctx context.Context, userID string, streakType entity.StreakType, targetID string,
) (*entity.Streak, error) {
	var result entity.Streak
	err := xcontext.DB(ctx).
		Where("user_id=? AND streak_type=? AND target_id=?", userID, streakType, targetID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *streakRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Streak, error) {
	var result []entity.Streak
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("streak_type ASC, target_id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *streakRepository) CreateIfNotExists(ctx context.Context, data *entity.Streak) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *streakRepository) Update(ctx context.Context, data *entity.Streak) error {
	return xcontext.DB(ctx).
		Model(&entity.Streak{}).
		Where("id=?", data.ID).
		Updates(map[string]any{
			"current_streak":     data.CurrentStreak,
			"longest_streak":     data.LongestStreak,
			"last_activity_date": data.LastActivityDate,
			"streak_start_date":  data.StreakStartDate,
			"is_active":          data.IsActive,
		}).Error
}

// DeactivateBefore marks every active streak whose last activity is before
// day as inactive. It returns the number of deactivated streaks.
func (r *streakRepository) DeactivateBefore(ctx context.Context, day string) (int64, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.Streak{}).
		Where("is_active=? AND last_activity_date<?", true, day).
		Update("is_active", false)

	return tx.RowsAffected, tx.Error
}
