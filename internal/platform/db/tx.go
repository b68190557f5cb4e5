package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Beginner is satisfied by *pgxpool.Pool.
type Beginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var txOptions = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

// WithTx runs fn in one ReadCommitted transaction. Repositories lock the rows they change with
// SELECT ... FOR UPDATE, which at this level waits for the competing writer and then reads its
// committed row. A deadlock or serialization failure reruns fn once in a fresh transaction, so fn
// must not keep side effects outside the transaction.
func WithTx(ctx context.Context, pool Beginner, fn func(pgx.Tx) error) error {
	err := runTx(ctx, pool, fn)
	if err != nil && IsSerializationFailure(err) && ctx.Err() == nil {
		err = runTx(ctx, pool, fn)
	}
	return err
}

func runTx(ctx context.Context, pool Beginner, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, txOptions)
	if err != nil && IsTransient(err) && ctx.Err() == nil {
		tx, err = pool.BeginTx(ctx, txOptions)
	}
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}
	return nil
}
