package invoices_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/counter"
	"github.com/laxmi-pos/laxmi-pos/internal/invoices"
	"github.com/laxmi-pos/laxmi-pos/internal/orders"
	"github.com/laxmi-pos/laxmi-pos/internal/store/memory"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
)

var (
	kurti = catalog.SKU{ProductID: "KUR-001", Size: "M", Color: "Red"}
	skirt = catalog.SKU{ProductID: "SKT-004", Size: "M", Color: "Black"}
)

type shop struct {
	store    *memory.Store
	catalog  *catalog.Service
	counter  *counter.Service
	tokens   *tokens.Service
	invoices *invoices.Service
}

// newShop stocks kurti (100.00, 10% off) and skirt (250.00) with 10 stored and 5 displayed units each.
func newShop(t *testing.T) shop {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	s := shop{
		store:    store,
		catalog:  catalog.NewService(store.Catalog(), store.Audit(), catalog.ServiceConfig{}),
		counter:  counter.NewService(store.Counter(), store.Audit(), nil),
		tokens:   tokens.NewService(store.Tokens(), store.Audit(), 20),
		invoices: invoices.NewService(store.Invoices(), store.Audit(), invoices.ServiceConfig{TaxRate: invoices.DefaultTaxRate}),
	}
	products := []catalog.AdmitInput{
		{SKU: kurti, Name: "Cotton Kurti", UnitPrice: decimal.NewFromInt(100), Discount: decimal.NewFromInt(10)},
		{SKU: skirt, Name: "Pleated Skirt", UnitPrice: decimal.NewFromInt(250)},
	}
	lines := make([]orders.LineInput, 0, len(products))
	for _, p := range products {
		_, err := s.catalog.Admit(ctx, p)
		require.NoError(t, err)
		lines = append(lines, orders.LineInput{SKU: p.SKU, Quantity: 10})
	}
	ord := orders.NewService(store.Orders(), store.Audit(), orders.ServiceConfig{})
	o, err := ord.Place(ctx, lines)
	require.NoError(t, err)
	require.NoError(t, ord.Receive(ctx, o.ID))
	for _, p := range products {
		_, err := s.counter.MoveStoredToDisplayed(ctx, p.SKU, 5)
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := s.tokens.AllocateTokenID(ctx)
		require.NoError(t, err)
	}
	return s
}

func (s shop) claim(t *testing.T) string {
	t.Helper()
	tok, err := s.tokens.Claim(context.Background())
	require.NoError(t, err)
	return tok.ID
}

func (s shop) sell(t *testing.T, tokenID string, sku catalog.SKU, qty int64) {
	t.Helper()
	_, err := s.counter.MoveDisplayedToToken(context.Background(), tokenID, sku, qty)
	require.NoError(t, err)
}

func TestCheckoutScenario(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	tok := s.claim(t)
	s.sell(t, tok, kurti, 2)

	inv, err := s.invoices.Generate(ctx, invoices.GenerateInput{TokenIDs: []string{tok}, PaymentMode: invoices.PaymentCash})
	require.NoError(t, err)
	require.Equal(t, "INV-0000000000", inv.ID)
	require.Equal(t, "203.40", inv.Total.StringFixed(2))
	require.Equal(t, "20.00", inv.DiscountGiven.StringFixed(2))
	require.Equal(t, []string{tok}, inv.TokenIDs)

	held, err := s.tokens.HasHoldings(ctx, tok)
	require.NoError(t, err)
	require.False(t, held)

	rec, err := s.store.Inventory().LookupRecord(ctx, kurti)
	require.NoError(t, err)
	require.EqualValues(t, 5, rec.Stored)
	require.EqualValues(t, 3, rec.Displayed)

	status, err := s.store.Tokens().LookupToken(ctx, tok)
	require.NoError(t, err)
	require.False(t, status.Assigned)
	require.NotNil(t, status.InvoiceID)
	require.Equal(t, inv.ID, *status.InvoiceID)

	require.NoError(t, s.tokens.Release(ctx, tok))
	status, err = s.store.Tokens().LookupToken(ctx, tok)
	require.NoError(t, err)
	require.True(t, status.Free())
}

func TestGenerateAggregatesAcrossTokens(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	a, b := s.claim(t), s.claim(t)
	s.sell(t, a, kurti, 1)
	s.sell(t, a, skirt, 2)
	s.sell(t, b, kurti, 2)

	inv, err := s.invoices.Generate(ctx, invoices.GenerateInput{
		TokenIDs:    []string{a, b, " " + a + " "},
		PaymentMode: "CARD",
	})
	require.NoError(t, err)
	require.Equal(t, invoices.PaymentCard, inv.PaymentMode)
	require.Equal(t, []string{a, b}, inv.TokenIDs)

	details, err := s.invoices.Details(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, details.Lines, 2)

	byProduct := map[string]invoices.Line{}
	for _, l := range details.Lines {
		byProduct[l.SKU.ProductID] = l
	}
	require.EqualValues(t, 3, byProduct["KUR-001"].Quantity)
	require.Equal(t, "305.10", byProduct["KUR-001"].LineTotal.StringFixed(2))
	require.Equal(t, "565.00", byProduct["SKT-004"].LineTotal.StringFixed(2))
	require.Equal(t, "870.10", details.Total.StringFixed(2))
	require.Equal(t, "30.00", details.DiscountGiven.StringFixed(2))
}

func TestGenerateGuards(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)

	_, err := s.invoices.Generate(ctx, invoices.GenerateInput{TokenIDs: []string{"TOK-00"}, PaymentMode: invoices.PaymentCash})
	require.ErrorIs(t, err, invoices.ErrTokenNotAssigned)

	_, err = s.invoices.Generate(ctx, invoices.GenerateInput{TokenIDs: []string{"TOK-77"}, PaymentMode: invoices.PaymentCash})
	require.ErrorIs(t, err, tokens.ErrNotFound)

	tok := s.claim(t)
	_, err = s.invoices.Generate(ctx, invoices.GenerateInput{TokenIDs: []string{tok}, PaymentMode: invoices.PaymentCash})
	require.ErrorIs(t, err, invoices.ErrNoProducts)

	s.sell(t, tok, skirt, 1)
	_, err = s.invoices.Generate(ctx, invoices.GenerateInput{TokenIDs: []string{tok}, PaymentMode: "cheque"})
	require.ErrorIs(t, err, invoices.ErrInvalidPaymentMode)

	qty, err := s.tokens.PeekHolding(ctx, tok, skirt)
	require.NoError(t, err)
	require.EqualValues(t, 1, qty)

	inv, err := s.invoices.Generate(ctx, invoices.GenerateInput{TokenIDs: []string{tok}, PaymentMode: invoices.PaymentWallet})
	require.NoError(t, err)
	require.Equal(t, "INV-0000000000", inv.ID)

	_, err = s.invoices.Generate(ctx, invoices.GenerateInput{TokenIDs: []string{tok}, PaymentMode: invoices.PaymentCash})
	require.ErrorIs(t, err, invoices.ErrTokenNotAssigned)
}

func TestLinesSnapshotPricing(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	tok := s.claim(t)
	s.sell(t, tok, skirt, 1)
	inv, err := s.invoices.Generate(ctx, invoices.GenerateInput{TokenIDs: []string{tok}, PaymentMode: invoices.PaymentCash})
	require.NoError(t, err)

	_, err = s.catalog.UpdatePrice(ctx, skirt, decimal.NewFromInt(999))
	require.NoError(t, err)

	details, err := s.invoices.Details(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, "250.00", details.Lines[0].UnitPrice.StringFixed(2))
	require.Equal(t, "Pleated Skirt", details.Lines[0].Name)

	all, err := s.invoices.ListLines(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestAdjustDiscountLeavesTotal(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	tok := s.claim(t)
	s.sell(t, tok, kurti, 2)
	inv, err := s.invoices.Generate(ctx, invoices.GenerateInput{TokenIDs: []string{tok}, PaymentMode: invoices.PaymentCash})
	require.NoError(t, err)

	_, err = s.invoices.AdjustDiscount(ctx, "INV-0000000099", decimal.NewFromInt(-1))
	require.ErrorIs(t, err, invoices.ErrNotFound)
	_, err = s.invoices.AdjustDiscount(ctx, inv.ID, decimal.NewFromInt(-1))
	require.ErrorIs(t, err, invoices.ErrInvalidDiscount)

	updated, err := s.invoices.AdjustDiscount(ctx, strings.ToLower(inv.ID), decimal.RequireFromString("55.555"))
	require.NoError(t, err)
	require.Equal(t, "55.56", updated.DiscountGiven.StringFixed(2))
	require.True(t, updated.Total.Equal(inv.Total))

	details, err := s.invoices.Details(ctx, inv.ID)
	require.NoError(t, err)
	require.Equal(t, "55.56", details.DiscountGiven.StringFixed(2))
	require.Equal(t, "203.40", details.Total.StringFixed(2))
}

func TestListByDate(t *testing.T) {
	ctx := context.Background()
	s := newShop(t)
	tok := s.claim(t)
	s.sell(t, tok, kurti, 1)
	_, err := s.invoices.Generate(ctx, invoices.GenerateInput{TokenIDs: []string{tok}, PaymentMode: invoices.PaymentCash})
	require.NoError(t, err)

	today, err := s.invoices.ListByDate(ctx, time.Now())
	require.NoError(t, err)
	require.Len(t, today, 1)

	yesterday, err := s.invoices.ListByDate(ctx, time.Now().AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Empty(t, yesterday)
}
