package repository

import (
	"context"
	"time"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
)

type GetPatternFilter struct {
	UserID      string
	PatternType entity.PatternType

	// LastSeenSince filters patterns which were seen after this time.
	LastSeenSince time.Time
}

type PatternRepository interface {
	GetList(ctx context.Context, filter GetPatternFilter) ([]entity.Pattern, error)
	Replace(ctx context.Context, userID string, types []entity.PatternType, patterns []entity.Pattern) error
}

type patternRepository struct{}

func NewPatternRepository() *patternRepository {
	return &patternRepository{}
}

func (r *patternRepository) GetList(ctx context.Context, filter GetPatternFilter) ([]entity.Pattern, error) {
	var result []entity.Pattern
	tx := xcontext.DB(ctx).Where("user_id=?", filter.UserID)
	if filter.PatternType != "" {
		tx = tx.Where("pattern_type=?", filter.PatternType)
	}

	if !filter.LastSeenSince.IsZero() {
		tx = tx.Where("last_seen>=?", filter.LastSeenSince)
	}

	err := tx.Order("frequency DESC, pattern_type ASC, pattern_key ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Replace deletes the patterns of the given types and inserts the new ones.
// It should be called inside a transaction so that readers never observe a
// partial snapshot.
func (r *patternRepository) Replace(
	ctx context.Context, userID string, types []entity.PatternType, patterns []entity.Pattern,
) error {
	err := xcontext.DB(ctx).
		Where("user_id=? AND pattern_type IN (?)", userID, types).
		Delete(&entity.Pattern{}).Error
	if err != nil {
		return err
	}

	if len(patterns) == 0 {
		return nil
	}

	return xcontext.DB(ctx).CreateInBatches(patterns, 100).Error
}
