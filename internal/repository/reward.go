package repository

import (
	"context"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type RewardRepository interface {
	GetUpToLevel(ctx context.Context, level int) ([]entity.Reward, error)
	Upsert(ctx context.Context, data *entity.Reward) error
	GetUserRewards(ctx context.Context, userID string) ([]entity.UserReward, error)
	CreateUserReward(ctx context.Context, data *entity.UserReward) (bool, error)
}

type rewardRepository struct{}

func NewRewardRepository() *rewardRepository {
	return &rewardRepository{}
}

func (r *rewardRepository) GetUpToLevel(ctx context.Context, level int) ([]entity.Reward, error) {
	var result []entity.Reward
	err := xcontext.DB(ctx).
		Where("required_level<=?", level).
		Order("required_level ASC, code ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardRepository) Upsert(ctx context.Context, data *entity.Reward) error {
	return xcontext.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "kind", "required_level", "updated_at"}),
	}).Create(data).Error
}

func (r *rewardRepository) GetUserRewards(ctx context.Context, userID string) ([]entity.UserReward, error) {
	var result []entity.UserReward
	err := xcontext.DB(ctx).
		Preload("Reward").
		Where("user_id=?", userID).
		Order("granted_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardRepository) CreateUserReward(ctx context.Context, data *entity.UserReward) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}
