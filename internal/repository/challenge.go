package repository

import (
	"context"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type ChallengeRepository interface {
	GetByID(ctx context.Context, id string) (*entity.DailyChallenge, error)
	GetActiveOn(ctx context.Context, day string) ([]entity.DailyChallenge, error)
	Upsert(ctx context.Context, data *entity.DailyChallenge) error
	GetCompletions(ctx context.Context, userID, day string) ([]entity.DailyChallengeCompletion, error)
	CreateCompletion(ctx context.Context, data *entity.DailyChallengeCompletion) (bool, error)
}

type challengeRepository struct{}

func NewChallengeRepository() *challengeRepository {
	return &challengeRepository{}
}

func (r *challengeRepository) GetByID(ctx context.Context, id string) (*entity.DailyChallenge, error) {
	var result entity.DailyChallenge
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetActiveOn returns challenges available every day and challenges limited
// to the given day.
func (r *challengeRepository) GetActiveOn(ctx context.Context, day string) ([]entity.DailyChallenge, error) {
	var result []entity.DailyChallenge
	err := xcontext.DB(ctx).
		Where("active_date='' OR active_date=?", day).
		Order("code ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *challengeRepository) Upsert(ctx context.Context, data *entity.DailyChallenge) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "description", "requirement", "required_level", "xp_reward",
			"bonus_xp", "bonus_before_hour", "active_date", "updated_at",
		}),
	}).Create(data).Error
}

func (r *challengeRepository) GetCompletions(
	ctx context.Context, userID, day string,
) ([]entity.DailyChallengeCompletion, error) {
	var result []entity.DailyChallengeCompletion
	tx := xcontext.DB(ctx).Preload("Challenge").Where("user_id=?", userID)
	if day != "" {
		tx = tx.Where("date=?", day)
	}

	if err := tx.Order("completed_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *challengeRepository) CreateCompletion(
	ctx context.Context, data *entity.DailyChallengeCompletion,
) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}
