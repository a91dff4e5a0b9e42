package postgres

import (
	"context"

	"gorm.io/gorm"

	"face-search/domain/repositories"
)

type txKey struct{}

// TransactorImpl carries a gorm transaction in the context so the
// repositories in this package join it transparently.
type TransactorImpl struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) repositories.Transactor {
	return &TransactorImpl{db: db}
}

func (t *TransactorImpl) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// dbFromContext returns the transaction bound to ctx, or the fallback
// connection when no transaction is open.
func dbFromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
