package xcontext

import (
	"context"

	"gorm.io/gorm"
)

// WithDBTransaction opens a transaction on the database of ctx. All calls of
// DB(ctx) on the returned context use this transaction until it is committed
// or rolled back.
func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, dbTransactionKey{}, DB(ctx).Begin())
}

// WithCommitDBTransaction commits the transaction opened by WithDBTransaction.
func WithCommitDBTransaction(ctx context.Context) error {
	tx := ctx.Value(dbTransactionKey{})
	if tx == nil {
		return nil
	}

	return tx.(*gorm.DB).Commit().Error
}

// WithRollbackDBTransaction rollbacks the transaction opened by
// WithDBTransaction. It is safe to call after the transaction was committed,
// so it can be deferred right after opening.
func WithRollbackDBTransaction(ctx context.Context) {
	tx := ctx.Value(dbTransactionKey{})
	if tx == nil {
		return
	}

	tx.(*gorm.DB).Rollback()
}

// Transaction runs fn inside a transaction. If ctx is already inside a
// transaction, a savepoint is used, so a failure of fn only rollbacks the
// changes made by fn.
func Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return DB(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, dbTransactionKey{}, tx))
	})
}
