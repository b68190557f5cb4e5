package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakePool struct {
	levels []pgx.TxIsoLevel
	txs    []*fakeTx
}

func (p *fakePool) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	p.levels = append(p.levels, opts.IsoLevel)
	tx := &fakeTx{}
	p.txs = append(p.txs, tx)
	return tx, nil
}

func TestWithTxRerunsSerializationFailureOnce(t *testing.T) {
	pool := &fakePool{}
	calls := 0
	err := WithTx(context.Background(), pool, func(pgx.Tx) error {
		calls++
		if calls == 1 {
			return fmt.Errorf("inventory: lock record: %w", &pgconn.PgError{Code: codeSerializationFailure})
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Equal(t, []pgx.TxIsoLevel{pgx.ReadCommitted, pgx.ReadCommitted}, pool.levels)
	require.True(t, pool.txs[0].rolledBack)
	require.True(t, pool.txs[1].committed)
}

func TestWithTxGivesUpAfterSecondConflict(t *testing.T) {
	pool := &fakePool{}
	calls := 0
	err := WithTx(context.Background(), pool, func(pgx.Tx) error {
		calls++
		return &pgconn.PgError{Code: codeDeadlockDetected}
	})
	require.True(t, IsSerializationFailure(err))
	require.Equal(t, 2, calls)
}

func TestWithTxDoesNotRerunDomainErrors(t *testing.T) {
	pool := &fakePool{}
	domainErr := errors.New("inventory: insufficient stored quantity")
	calls := 0
	err := WithTx(context.Background(), pool, func(pgx.Tx) error {
		calls++
		return domainErr
	})
	require.ErrorIs(t, err, domainErr)
	require.Equal(t, 1, calls)
	require.True(t, pool.txs[0].rolledBack)
	require.False(t, pool.txs[0].committed)
}
