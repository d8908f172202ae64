package repository

import (
	"context"
	"errors"

	"github.com/questx-lab/progression/internal/entity"
	"github.com/questx-lab/progression/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LedgerRepository interface {
	Get(ctx context.Context, userID string) (*entity.XPLedger, error)
	CreateIfNotExists(ctx context.Context, userID string) error
	IncreaseTotalXP(ctx context.Context, userID string, amount int64) error
	CreateAward(ctx context.Context, award *entity.XPAward) (bool, error)
}

type ledgerRepository struct{}

func NewLedgerRepository() *ledgerRepository {
	return &ledgerRepository{}
}

func (r *ledgerRepository) Get(ctx context.Context, userID string) (*entity.XPLedger, error) {
	var result entity.XPLedger
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ledgerRepository) CreateIfNotExists(ctx context.Context, userID string) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.XPLedger{UserID: userID}).Error
}

func (r *ledgerRepository) IncreaseTotalXP(ctx context.Context, userID string, amount int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.XPLedger{}).
		Where("user_id=?", userID).
		Update("total_xp", gorm.Expr("total_xp+?", amount))

	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// CreateAward inserts the receipt of an award. It returns false if the same
// award was already applied.
func (r *ledgerRepository) CreateAward(ctx context.Context, award *entity.XPAward) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(award)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected > 0, nil
}
