package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/orders"
	"github.com/laxmi-pos/laxmi-pos/internal/store/memory"
)

var (
	jacket = catalog.SKU{ProductID: "JKT-005", Size: "XL", Color: "Olive"}
	blouse = catalog.SKU{ProductID: "BLS-002", Size: "S", Color: "White"}
)

// newLedger admits jacket and blouse and receives the given stored quantities.
func newLedger(t *testing.T, jackets, blouses int64) (*inventory.Service, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	cat := catalog.NewService(store.Catalog(), nil, catalog.ServiceConfig{})
	for _, in := range []catalog.AdmitInput{
		{SKU: jacket, Name: "Ladies Jacket", UnitPrice: decimal.NewFromInt(3000)},
		{SKU: blouse, Name: "Silk Blouse", UnitPrice: decimal.NewFromInt(700)},
	} {
		_, err := cat.Admit(ctx, in)
		require.NoError(t, err)
	}
	var lines []orders.LineInput
	if jackets > 0 {
		lines = append(lines, orders.LineInput{SKU: jacket, Quantity: jackets})
	}
	if blouses > 0 {
		lines = append(lines, orders.LineInput{SKU: blouse, Quantity: blouses})
	}
	if len(lines) > 0 {
		ord := orders.NewService(store.Orders(), nil, orders.ServiceConfig{})
		o, err := ord.Place(ctx, lines)
		require.NoError(t, err)
		require.NoError(t, ord.Receive(ctx, o.ID))
	}
	return inventory.NewService(store.Inventory(), store.Audit(), time.UTC), store
}

func TestQuantitiesOfUnknownSKUAreZero(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t, 0, 0)
	ghost := catalog.SKU{ProductID: "GHOST", Size: "M", Color: "Grey"}

	q, err := svc.GetDisplayed(ctx, ghost)
	require.NoError(t, err)
	require.Zero(t, q.Value)
	require.Equal(t, catalog.UnitTypePieces, q.UnitType)

	q, err = svc.GetStored(ctx, ghost)
	require.NoError(t, err)
	require.Zero(t, q.Value)

	_, err = svc.IsBelowThreshold(ctx, ghost)
	require.ErrorIs(t, err, inventory.ErrRecordNotFound)
}

func TestThresholds(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t, 6, 0)

	below, err := svc.IsBelowThreshold(ctx, jacket)
	require.NoError(t, err)
	require.False(t, below)

	_, err = svc.UpdateThreshold(ctx, jacket, -1)
	require.ErrorIs(t, err, inventory.ErrInvalidThreshold)
	_, err = svc.UpdateThreshold(ctx, catalog.SKU{ProductID: "X", Size: "Y", Color: "Z"}, 3)
	require.ErrorIs(t, err, inventory.ErrRecordNotFound)

	rec, err := svc.UpdateThreshold(ctx, jacket, 6)
	require.NoError(t, err)
	require.EqualValues(t, 6, rec.Threshold)

	below, err = svc.IsBelowThreshold(ctx, jacket)
	require.NoError(t, err)
	require.True(t, below)

	low, err := svc.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 2)
	require.Equal(t, blouse, low[0].SKU)
	require.Equal(t, "Silk Blouse", low[0].Name)
}

func TestMovementsNeverDriveStockNegative(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t, 5, 0)

	_, err := svc.TransferStoredToDisplayed(ctx, jacket, 6)
	require.ErrorIs(t, err, inventory.ErrInsufficientStored)
	_, err = svc.RemoveStored(ctx, jacket, 6)
	require.ErrorIs(t, err, inventory.ErrInsufficientStored)
	_, err = svc.RemoveStored(ctx, jacket, 0)
	require.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	rec, err := svc.TransferStoredToDisplayed(ctx, jacket, 3)
	require.NoError(t, err)
	require.EqualValues(t, 2, rec.Stored)
	require.EqualValues(t, 3, rec.Displayed)

	rec, err = svc.RemoveStored(ctx, jacket, 2)
	require.NoError(t, err)
	require.Zero(t, rec.Stored)
	require.EqualValues(t, 3, rec.Displayed)

	entries, page, err := svc.ListTransactions(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, page.Total)
	require.Len(t, entries, 3)
	require.Equal(t, inventory.TransactionInventorySub, entries[2].Type)
}

func TestLogTransactionLeavesQuantities(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t, 4, 0)

	_, err := svc.LogTransaction(ctx, "RESTOCK", jacket, 1)
	require.ErrorIs(t, err, inventory.ErrUnknownTransactionType)
	_, err = svc.LogTransaction(ctx, inventory.TransactionCounterAdd, jacket, -2)
	require.ErrorIs(t, err, inventory.ErrInvalidQuantity)
	_, err = svc.LogTransaction(ctx, inventory.TransactionCounterAdd, catalog.SKU{ProductID: "A", Size: "B", Color: "C"}, 1)
	require.ErrorIs(t, err, inventory.ErrRecordNotFound)

	entry, err := svc.LogTransaction(ctx, inventory.TransactionCounterAdd, jacket, 2)
	require.NoError(t, err)
	require.Equal(t, "TRC-0000000001", entry.ID)

	q, err := svc.GetStored(ctx, jacket)
	require.NoError(t, err)
	require.EqualValues(t, 4, q.Value)
}

func TestTransactionListings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t, 8, 8)
	for i := 0; i < 3; i++ {
		_, err := svc.TransferStoredToDisplayed(ctx, jacket, 1)
		require.NoError(t, err)
	}

	entries, page, err := svc.ListTransactions(ctx, 2, 2)
	require.NoError(t, err)
	require.Equal(t, 5, page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.True(t, page.HasNext())
	require.Len(t, entries, 2)
	require.Equal(t, "TRC-0000000002", entries[0].ID)

	today, err := svc.ListTransactionsByDate(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, today, 5)

	mine, err := svc.ListTransactionsForSKUByDate(ctx, blouse, time.Now())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, inventory.TransactionInventoryAdd, mine[0].Type)

	old, err := svc.ListTransactionsByDate(ctx, time.Now().AddDate(0, 0, -2))
	require.NoError(t, err)
	require.Empty(t, old)
}

func TestListInventoryJoinsNames(t *testing.T) {
	svc, _ := newLedger(t, 1, 2)
	views, err := svc.ListInventory(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "Silk Blouse", views[0].Name)
	require.EqualValues(t, 2, views[0].Stored)
	require.Equal(t, "Ladies Jacket", views[1].Name)
}
