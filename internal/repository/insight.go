package repository

import (
	"context"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
)

type InsightRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Insight, error)
	GetList(ctx context.Context, userID string, status entity.InsightStatus) ([]entity.Insight, error)
	ReplaceActive(ctx context.Context, userID string, timeframe entity.Timeframe, insights []entity.Insight) error
	UpdateStatus(ctx context.Context, id string, from, to entity.InsightStatus) (bool, error)
}

type insightRepository struct{}

func NewInsightRepository() *insightRepository {
	return &insightRepository{}
}

func (r *insightRepository) GetByID(ctx context.Context, id string) (*entity.Insight, error) {
	var result entity.Insight
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *insightRepository) GetList(
	ctx context.Context, userID string, status entity.InsightStatus,
) ([]entity.Insight, error) {
	var result []entity.Insight
	tx := xcontext.DB(ctx).Where("user_id=?", userID)
	if status != "" {
		tx = tx.Where("status=?", status)
	}

	err := tx.Order("priority_rank DESC, confidence DESC, created_at DESC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ReplaceActive removes the active insights of the timeframe and inserts the
// new ones. Acknowledged and dismissed insights are kept.
func (r *insightRepository) ReplaceActive(
	ctx context.Context, userID string, timeframe entity.Timeframe, insights []entity.Insight,
) error {
	err := xcontext.DB(ctx).
		Where("user_id=? AND timeframe=? AND status=?", userID, timeframe, entity.InsightActive).
		Delete(&entity.Insight{}).Error
	if err != nil {
		return err
	}

	if len(insights) == 0 {
		return nil
	}

	return xcontext.DB(ctx).CreateInBatches(insights, 100).Error
}

// UpdateStatus moves the insight from one status to another. The update is
// conditional on the current status, so only one of concurrent transitions
// can succeed. It returns false if the insight was not in the from status.
func (r *insightRepository) UpdateStatus(
	ctx context.Context, id string, from, to entity.InsightStatus,
) (bool, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.Insight{}).
		Where("id=? AND status=?", id, from).
		Update("status", to)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}
