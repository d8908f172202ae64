package repository

import (
	"context"
	"time"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type CountEntryFilter struct {
	UserID string
	Domain entity.DomainType

	// Day limits the count to a calendar day. Empty means all days.
	Day string
}

type EntryRepository interface {
	CreateIfNotExists(ctx context.Context, data *entity.Entry) (bool, error)
	Count(ctx context.Context, filter CountEntryFilter) (int64, error)
	GetByUserID(ctx context.Context, userID string) ([]entity.Entry, error)
	GetInWindow(ctx context.Context, userID string, start, end time.Time) ([]entity.Entry, error)
	GetActiveUserIDs(ctx context.Context, since time.Time) ([]string, error)
}

type entryRepository struct{}

func NewEntryRepository() *entryRepository {
	return &entryRepository{}
}

// CreateIfNotExists inserts the entry. It returns false if an entry with the
// same event id was already ingested.
func (r *entryRepository) CreateIfNotExists(ctx context.Context, data *entity.Entry) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}

func (r *entryRepository) Count(ctx context.Context, filter CountEntryFilter) (int64, error) {
	var result int64
	tx := xcontext.DB(ctx).Model(&entity.Entry{}).Where("user_id=?", filter.UserID)
	if filter.Domain != "" {
		tx = tx.Where("domain=?", filter.Domain)
	}

	if filter.Day != "" {
		tx = tx.Where("day=?", filter.Day)
	}

	if err := tx.Count(&result).Error; err != nil {
		return 0, err
	}

	return result, nil
}

func (r *entryRepository) GetByUserID(ctx context.Context, userID string) ([]entity.Entry, error) {
	var result []entity.Entry
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("occurred_at ASC, id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetInWindow returns entries whose occurred_at is in [start, end).
func (r *entryRepository) GetInWindow(
	ctx context.Context, userID string, start, end time.Time,
) ([]entity.Entry, error) {
	var result []entity.Entry
	err := xcontext.DB(ctx).
		Where("user_id=? AND occurred_at>=? AND occurred_at<?", userID, start, end).
		Order("occurred_at ASC, id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *entryRepository) GetActiveUserIDs(ctx context.Context, since time.Time) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.Entry{}).
		Where("occurred_at>=?", since).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
