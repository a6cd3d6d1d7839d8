package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// WithSnapshot executes a function inside a read-only repeatable-read
// transaction, so every query in fn sees the same committed state even while
// deposits and withdrawals keep landing. Used for integrity checks that
// compare figures across tables.
func (db *DB) WithSnapshot(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			// Rollback on error
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				err = fmt.Errorf("rollback failed: %v, original error: %w", rbErr, err)
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	// Ends the transaction; a read-only commit writes nothing
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
