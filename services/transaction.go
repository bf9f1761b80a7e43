package services

import (
	"context"
	"fmt"

	"github.com/lumapix/photos-api/repositories"
)

// WithTransaction executes a function within a database transaction.
// The context passed to fn carries the transaction, so repository calls made
// with it run on the transaction. Automatically commits if fn succeeds, rolls
// back on error.
func WithTransaction(ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) error) error {
	tx, err := txMgr.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Use defer to ensure rollback on panic
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p) // Re-panic after rollback
		}
	}()

	txCtx := repositories.ContextWithTransaction(ctx, tx)

	// Execute the provided function
	if err := fn(txCtx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}

	// Commit the transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// WithTransactionResult executes a function within a database transaction and
// returns a result. Uses generics to support any return type. The context
// passed to fn carries the transaction. Automatically commits on success,
// rolls back on error.
func WithTransactionResult[T any](ctx context.Context, txMgr repositories.TransactionManager, fn func(ctx context.Context, tx repositories.Transaction) (T, error)) (T, error) {
	var result T

	tx, err := txMgr.Begin(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Use defer to ensure rollback on panic
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p) // Re-panic after rollback
		}
	}()

	txCtx := repositories.ContextWithTransaction(ctx, tx)

	// Execute the provided function
	result, err = fn(txCtx, tx)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return result, fmt.Errorf("transaction error: %v, rollback error: %w", err, rbErr)
		}
		return result, err
	}

	// Commit the transaction
	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return result, nil
}
