package repository

import (
	"context"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	GetDefinitions(ctx context.Context) ([]entity.AchievementDefinition, error)
	UpsertDefinition(ctx context.Context, data *entity.AchievementDefinition) error
	GetUnlocks(ctx context.Context, userID string) ([]entity.AchievementUnlock, error)
	CreateUnlock(ctx context.Context, data *entity.AchievementUnlock) (bool, error)
}

type achievementRepository struct{}

func NewAchievementRepository() *achievementRepository {
	return &achievementRepository{}
}

func (r *achievementRepository) GetDefinitions(ctx context.Context) ([]entity.AchievementDefinition, error) {
	var result []entity.AchievementDefinition
	if err := xcontext.DB(ctx).Order("code ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// UpsertDefinition creates the definition, or updates the definition with the
// same code.
func (r *achievementRepository) UpsertDefinition(ctx context.Context, data *entity.AchievementDefinition) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "description", "requirement", "xp_reward", "rarity", "is_secret", "updated_at",
		}),
	}).Create(data).Error
}

func (r *achievementRepository) GetUnlocks(ctx context.Context, userID string) ([]entity.AchievementUnlock, error) {
	var result []entity.AchievementUnlock
	err := xcontext.DB(ctx).
		Preload("Achievement").
		Where("user_id=?", userID).
		Order("earned_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CreateUnlock inserts the unlock if the user has not unlocked the
// achievement yet. It returns false if the unlock already exists.
func (r *achievementRepository) CreateUnlock(ctx context.Context, data *entity.AchievementUnlock) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}
