package dao

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager runs a function inside one database transaction. Every DAO call
// made with the context handed to fn joins that transaction, so row locks
// taken by one DAO are held until fn returns.
type TxManager struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewTxManager(db *gorm.DB, lockTimeout time.Duration) *TxManager {
	return &TxManager{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if m.lockTimeout > 0 {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", m.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return err
			}
		}

		return fn(context.WithValue(ctx, txKey{}, tx))
	})

	return classify(err)
}

func txFromContext(ctx context.Context) *gorm.DB {
	tx, _ := ctx.Value(txKey{}).(*gorm.DB)
	return tx
}

// conn returns the transaction bound to ctx, or the pool when there is none.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx := txFromContext(ctx); tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
