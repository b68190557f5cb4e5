package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/counter"
	"github.com/laxmi-pos/laxmi-pos/internal/dashboard"
	"github.com/laxmi-pos/laxmi-pos/internal/invoices"
	"github.com/laxmi-pos/laxmi-pos/internal/orders"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/cache"
	"github.com/laxmi-pos/laxmi-pos/internal/store/memory"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
)

var frock = catalog.SKU{ProductID: "FRK-007", Size: "S", Color: "Pink"}

type world struct {
	store    *memory.Store
	tokens   *tokens.Service
	counter  *counter.Service
	invoices *invoices.Service
	orders   *orders.Service
}

func newWorld(t *testing.T) world {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	w := world{
		store:    store,
		tokens:   tokens.NewService(store.Tokens(), nil, 5),
		counter:  counter.NewService(store.Counter(), nil, nil),
		invoices: invoices.NewService(store.Invoices(), nil, invoices.ServiceConfig{TaxRate: invoices.DefaultTaxRate}),
		orders:   orders.NewService(store.Orders(), nil, orders.ServiceConfig{}),
	}
	_, err := catalog.NewService(store.Catalog(), nil, catalog.ServiceConfig{}).Admit(ctx, catalog.AdmitInput{
		SKU: frock, Name: "Girls Frock", UnitPrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	o, err := w.orders.Place(ctx, []orders.LineInput{{SKU: frock, Quantity: 20}})
	require.NoError(t, err)
	require.NoError(t, w.orders.Receive(ctx, o.ID))
	_, err = w.counter.MoveStoredToDisplayed(ctx, frock, 16)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := w.tokens.AllocateTokenID(ctx)
		require.NoError(t, err)
	}
	return w
}

func (w world) checkout(t *testing.T, qty int64) {
	t.Helper()
	ctx := context.Background()
	tok, err := w.tokens.Claim(ctx)
	require.NoError(t, err)
	_, err = w.counter.MoveDisplayedToToken(ctx, tok.ID, frock, qty)
	require.NoError(t, err)
	_, err = w.invoices.Generate(ctx, invoices.GenerateInput{TokenIDs: []string{tok.ID}, PaymentMode: invoices.PaymentCash})
	require.NoError(t, err)
	require.NoError(t, w.tokens.Release(ctx, tok.ID))
}

func (w world) service(c dashboard.Cache) *dashboard.Service {
	return dashboard.NewService(w.store.Dashboard(), w.store.Inventory(), w.tokens, c, time.UTC)
}

func TestSummaryAggregatesSalesAndCounts(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.checkout(t, 1)
	w.checkout(t, 2)

	pending, err := w.tokens.Claim(ctx)
	require.NoError(t, err)
	_, err = w.counter.MoveDisplayedToToken(ctx, pending.ID, frock, 3)
	require.NoError(t, err)
	_, err = w.tokens.Claim(ctx)
	require.NoError(t, err)

	cancelled, err := w.orders.Place(ctx, []orders.LineInput{{SKU: frock, Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, w.orders.Cancel(ctx, cancelled.ID))
	_, err = w.orders.Place(ctx, []orders.LineInput{{SKU: frock, Quantity: 1}})
	require.NoError(t, err)

	sum, err := w.service(nil).Summary(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, sum.Today.Invoices)
	require.Equal(t, "339.00", sum.Today.Total.StringFixed(2))
	require.Zero(t, sum.Yesterday.Invoices)
	require.Equal(t, 2, sum.Last7Days.Invoices)
	require.Equal(t, "339.00", sum.Last30Days.Total.StringFixed(2))

	require.Equal(t, 1, sum.Products)
	require.Equal(t, 2, sum.Invoices)
	require.Equal(t, 1, sum.OrdersPlaced)
	require.Equal(t, 1, sum.OrdersReceived)
	require.Equal(t, 1, sum.OrdersCancelled)
	require.Equal(t, 1, sum.PendingTokens)
	require.Equal(t, 1, sum.HoldingLines)
	require.EqualValues(t, 3, sum.HeldUnits)
	require.Equal(t, 1, sum.EmptyTokens)
	require.Equal(t, 1, sum.LowStock)
}

func TestSummaryCachedUntilRefresh(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	w := newWorld(t)
	svc := w.service(cache.NewVersioned(client, "dashboard", time.Minute))
	now := time.Now()

	first, err := svc.Summary(ctx, now)
	require.NoError(t, err)
	require.Zero(t, first.Today.Invoices)

	w.checkout(t, 1)

	stale, err := svc.Summary(ctx, now)
	require.NoError(t, err)
	require.Zero(t, stale.Today.Invoices)

	fresh, err := svc.Refresh(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, fresh.Today.Invoices)
	require.Equal(t, "113.00", fresh.Today.Total.StringFixed(2))
}

func TestSummaryWindowsRelativeToNow(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.checkout(t, 1)
	svc := w.service(nil)

	tomorrow, err := svc.Summary(ctx, time.Now().AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Zero(t, tomorrow.Today.Invoices)
	require.Equal(t, 1, tomorrow.Yesterday.Invoices)
	require.Equal(t, 1, tomorrow.Last7Days.Invoices)

	later, err := svc.Summary(ctx, time.Now().AddDate(0, 0, 10))
	require.NoError(t, err)
	require.Zero(t, later.Last7Days.Invoices)
	require.Equal(t, 1, later.Last30Days.Invoices)
}

func TestTokenListings(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	a, err := w.tokens.Claim(ctx)
	require.NoError(t, err)
	b, err := w.tokens.Claim(ctx)
	require.NoError(t, err)
	_, err = w.counter.MoveDisplayedToToken(ctx, b.ID, frock, 1)
	require.NoError(t, err)

	svc := w.service(nil)
	pending, err := svc.PendingTokens(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{b.ID}, pending)

	empty, err := svc.EmptyTokens(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{a.ID}, empty)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, frock, low[0].SKU)
}
