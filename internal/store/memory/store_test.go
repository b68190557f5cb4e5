package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

var skuA = catalog.SKU{ProductID: "KUR-001", Size: "M", Color: "Red"}

func TestWithTxDiscardsWorkOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.Inventory().WithTx(ctx, func(ctx context.Context, tx inventory.TxRepository) error {
		require.NoError(t, tx.InsertRecord(ctx, inventory.Record{SKU: skuA, Stored: 10}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Inventory().LookupRecord(ctx, skuA)
	require.ErrorIs(t, err, inventory.ErrRecordNotFound)
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := New()

	err := s.Inventory().WithTx(ctx, func(ctx context.Context, tx inventory.TxRepository) error {
		return tx.InsertRecord(ctx, inventory.Record{SKU: skuA, Stored: 10})
	})
	require.NoError(t, err)

	rec, err := s.Inventory().LookupRecord(ctx, skuA)
	require.NoError(t, err)
	require.EqualValues(t, 10, rec.Stored)
}

func TestSequenceAllocationRollsBackWithUnitOfWork(t *testing.T) {
	ctx := context.Background()
	s := New()
	var first int64
	require.NoError(t, s.Inventory().WithTx(ctx, func(ctx context.Context, tx inventory.TxRepository) error {
		var err error
		first, err = tx.NextTransactionSeq(ctx)
		return err
	}))
	_ = s.Inventory().WithTx(ctx, func(ctx context.Context, tx inventory.TxRepository) error {
		_, _ = tx.NextTransactionSeq(ctx)
		return errors.New("rollback")
	})
	var second int64
	require.NoError(t, s.Inventory().WithTx(ctx, func(ctx context.Context, tx inventory.TxRepository) error {
		var err error
		second, err = tx.NextTransactionSeq(ctx)
		return err
	}))
	require.EqualValues(t, 0, first)
	require.EqualValues(t, 1, second)
}

func TestCancelledContextIsNotCommitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := New()
	err := s.Inventory().WithTx(ctx, func(ctx context.Context, tx inventory.TxRepository) error {
		cancel()
		return tx.InsertRecord(ctx, inventory.Record{SKU: skuA})
	})
	require.ErrorIs(t, err, context.Canceled)
	_, err = s.Inventory().LookupRecord(context.Background(), skuA)
	require.ErrorIs(t, err, inventory.ErrRecordNotFound)
}

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	idem := New().Idempotency()

	require.NoError(t, idem.CheckAndInsert(ctx, "k1", "orders.place"))
	require.ErrorIs(t, idem.CheckAndInsert(ctx, "k1", "orders.place"), shared.ErrIdempotencyConflict)
	require.NoError(t, idem.Delete(ctx, "k1"))
	require.NoError(t, idem.CheckAndInsert(ctx, "k1", "orders.place"))

	removed, err := idem.Cleanup(ctx, time.Hour)
	require.NoError(t, err)
	require.Zero(t, removed)
	removed, err = idem.Cleanup(ctx, -time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
}

func TestAuditRecorderDefaultsActor(t *testing.T) {
	ctx := shared.ContextWithActor(context.Background(), "till-2")
	audit := New().Audit()
	require.NoError(t, audit.Record(ctx, shared.AuditLog{Action: "tokens:claim", Entity: "token", EntityID: "TOK-00"}))
	require.Error(t, audit.Record(ctx, shared.AuditLog{Action: "x"}))

	entries := audit.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "till-2", entries[0].Actor)
	require.False(t, entries[0].At.IsZero())
}

func TestDiscardedLogAppendsAreOverwritten(t *testing.T) {
	ctx := context.Background()
	s := New()
	appendEntry := func(id string, fail bool) error {
		return s.Inventory().WithTx(ctx, func(ctx context.Context, tx inventory.TxRepository) error {
			require.NoError(t, tx.AppendLog(ctx, inventory.LogEntry{ID: id, Type: inventory.TransactionCounterAdd, SKU: skuA, Quantity: 1}))
			if fail {
				return errors.New("rolled back")
			}
			return nil
		})
	}

	require.NoError(t, appendEntry("TRC-0000000000", false))
	before, err := s.Inventory().ListLog(ctx, inventory.TransactionFilter{})
	require.NoError(t, err)

	require.Error(t, appendEntry("TRC-LOST", true))
	require.NoError(t, appendEntry("TRC-0000000001", false))

	entries, err := s.Inventory().ListLog(ctx, inventory.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "TRC-0000000000", entries[0].ID)
	require.Equal(t, "TRC-0000000001", entries[1].ID)
	require.Len(t, before, 1)
	require.Equal(t, "TRC-0000000000", before[0].ID)

	n, err := s.Inventory().CountLog(ctx, inventory.TransactionFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, n)
}
