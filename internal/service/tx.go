package service

import (
	"context"

	"gorm.io/gorm"
)

// runTx runs fn inside a transaction. With a nil db (unit tests over fakes) fn gets a nil tx.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}
