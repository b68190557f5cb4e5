package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/invoices"
	"github.com/laxmi-pos/laxmi-pos/internal/orders"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/db"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
)

var errRecordExists = errors.New("memory: inventory record already exists")

// memTx implements the transactional statements of every module on a private state copy.
type memTx struct {
	st  *state
	now func() time.Time
}

func (t *memTx) nextSeq(name string) int64 {
	v := t.st.sequences[name]
	t.st.sequences[name] = v + 1
	return v
}

// catalog

func (t *memTx) GetProduct(_ context.Context, sku catalog.SKU) (catalog.Product, error) {
	p, ok := t.st.products[sku]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (t *memTx) GetProductForUpdate(ctx context.Context, sku catalog.SKU) (catalog.Product, error) {
	return t.GetProduct(ctx, sku)
}

func (t *memTx) InsertProduct(_ context.Context, p catalog.Product) error {
	if _, ok := t.st.products[p.SKU]; ok {
		return catalog.ErrDuplicateSKU
	}
	t.st.products[p.SKU] = p
	return nil
}

func (t *memTx) UpdateProduct(_ context.Context, p catalog.Product) error {
	if _, ok := t.st.products[p.SKU]; !ok {
		return catalog.ErrNotFound
	}
	p.UpdatedAt = t.now()
	t.st.products[p.SKU] = p
	return nil
}

func (t *memTx) UpdateFamilyDescription(_ context.Context, productID, description string) (int64, error) {
	var n int64
	for sku, p := range t.st.products {
		if sku.ProductID != productID {
			continue
		}
		p.Description = description
		p.UpdatedAt = t.now()
		t.st.products[sku] = p
		n++
	}
	return n, nil
}

func (t *memTx) CreateStockRecord(_ context.Context, sku catalog.SKU, threshold int64) error {
	if _, ok := t.st.records[sku]; ok {
		return nil
	}
	t.st.records[sku] = inventory.Record{SKU: sku, Threshold: threshold, UpdatedAt: t.now()}
	return nil
}

// inventory

func (t *memTx) GetRecordForUpdate(_ context.Context, sku catalog.SKU) (inventory.Record, error) {
	rec, ok := t.st.records[sku]
	if !ok {
		return inventory.Record{}, inventory.ErrRecordNotFound
	}
	return rec, nil
}

func (t *memTx) InsertRecord(_ context.Context, rec inventory.Record) error {
	if _, ok := t.st.records[rec.SKU]; ok {
		return errRecordExists
	}
	t.st.records[rec.SKU] = rec
	return nil
}

func (t *memTx) SaveRecord(_ context.Context, rec inventory.Record) error {
	if _, ok := t.st.records[rec.SKU]; !ok {
		return inventory.ErrRecordNotFound
	}
	t.st.records[rec.SKU] = rec
	return nil
}

func (t *memTx) NextTransactionSeq(context.Context) (int64, error) {
	return t.nextSeq(db.SeqTransaction), nil
}

func (t *memTx) AppendLog(_ context.Context, e inventory.LogEntry) error {
	t.st.log = append(t.st.log, e)
	return nil
}

// tokens

func (t *memTx) ListTokenNumbers(context.Context) ([]int, error) {
	numbers := make([]int, 0, len(t.st.tokens))
	for _, tok := range t.st.tokens {
		numbers = append(numbers, tok.Number)
	}
	slices.Sort(numbers)
	return numbers, nil
}

func (t *memTx) InsertToken(_ context.Context, tok tokens.Token) error {
	for _, existing := range t.st.tokens {
		if existing.Number == tok.Number || existing.ID == tok.ID {
			return tokens.ErrPoolExhausted
		}
	}
	t.st.tokens[tok.ID] = tok
	return nil
}

func (t *memTx) GetTokenForUpdate(_ context.Context, id string) (tokens.Token, error) {
	tok, ok := t.st.tokens[id]
	if !ok {
		return tokens.Token{}, tokens.ErrNotFound
	}
	return tok, nil
}

func (t *memTx) ClaimFreeToken(context.Context) (tokens.Token, error) {
	var (
		best  tokens.Token
		found bool
	)
	for _, tok := range t.st.tokens {
		if tok.Assigned {
			continue
		}
		if !found || tok.Number < best.Number {
			best, found = tok, true
		}
	}
	if !found {
		return tokens.Token{}, tokens.ErrNoneAvailable
	}
	return best, nil
}

func (t *memTx) SaveToken(_ context.Context, tok tokens.Token) error {
	if _, ok := t.st.tokens[tok.ID]; !ok {
		return tokens.ErrNotFound
	}
	t.st.tokens[tok.ID] = tok
	return nil
}

func (t *memTx) DeleteToken(_ context.Context, id string) error {
	if _, ok := t.st.tokens[id]; !ok {
		return tokens.ErrNotFound
	}
	delete(t.st.tokens, id)
	delete(t.st.holdings, id)
	return nil
}

func (t *memTx) CountTokenHoldings(_ context.Context, id string) (int, error) {
	return len(t.st.holdings[id]), nil
}

func (t *memTx) GetHoldingForUpdate(_ context.Context, id string, sku catalog.SKU) (tokens.Holding, error) {
	qty, ok := t.st.holdings[id][sku]
	if !ok {
		return tokens.Holding{}, tokens.ErrNoSuchHolding
	}
	return tokens.Holding{TokenID: id, SKU: sku, Quantity: qty}, nil
}

func (t *memTx) UpsertHolding(_ context.Context, id string, sku catalog.SKU, quantity int64) (tokens.Holding, error) {
	if _, ok := t.st.tokens[id]; !ok {
		return tokens.Holding{}, tokens.ErrNotFound
	}
	held := t.st.holdings[id]
	if held == nil {
		held = map[catalog.SKU]int64{}
		t.st.holdings[id] = held
	}
	held[sku] += quantity
	return tokens.Holding{TokenID: id, SKU: sku, Quantity: held[sku]}, nil
}

func (t *memTx) DeleteHolding(_ context.Context, id string, sku catalog.SKU) error {
	held := t.st.holdings[id]
	if _, ok := held[sku]; !ok {
		return tokens.ErrNoSuchHolding
	}
	delete(held, sku)
	if len(held) == 0 {
		delete(t.st.holdings, id)
	}
	return nil
}

func (t *memTx) ListHoldingsForTokens(_ context.Context, ids []string) ([]tokens.Holding, error) {
	out := []tokens.Holding{}
	for _, id := range ids {
		for sku, qty := range t.st.holdings[id] {
			out = append(out, tokens.Holding{TokenID: id, SKU: sku, Quantity: qty})
		}
	}
	slices.SortFunc(out, func(a, b tokens.Holding) int {
		return cmp.Or(compareSKU(a.SKU, b.SKU), cmp.Compare(a.TokenID, b.TokenID))
	})
	return out, nil
}

func (t *memTx) DeleteTokenHoldings(_ context.Context, id string) error {
	delete(t.st.holdings, id)
	return nil
}

// orders

func (t *memTx) NextOrderSeq(context.Context) (int64, error) {
	return t.nextSeq(db.SeqOrder), nil
}

func (t *memTx) InsertOrder(_ context.Context, o orders.Order) error {
	if _, ok := t.st.orders[o.ID]; ok {
		return errors.New("memory: order id already used")
	}
	t.st.orders[o.ID] = o
	return nil
}

func (t *memTx) InsertOrderLine(_ context.Context, l orders.Line) error {
	t.st.orderLines[l.OrderID] = append(t.st.orderLines[l.OrderID], l)
	return nil
}

func (t *memTx) GetOrderForUpdate(_ context.Context, id string) (orders.Order, error) {
	o, ok := t.st.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

func (t *memTx) SaveOrder(_ context.Context, o orders.Order) error {
	if _, ok := t.st.orders[o.ID]; !ok {
		return orders.ErrNotFound
	}
	t.st.orders[o.ID] = o
	return nil
}

func (t *memTx) ListOrderLines(_ context.Context, id string) ([]orders.Line, error) {
	return slices.Clone(t.st.orderLines[id]), nil
}

// invoices

func (t *memTx) NextInvoiceSeq(context.Context) (int64, error) {
	return t.nextSeq(db.SeqInvoice), nil
}

func (t *memTx) InsertInvoice(_ context.Context, inv invoices.Invoice) error {
	if _, ok := t.st.invoices[inv.ID]; ok {
		return errors.New("memory: invoice id already used")
	}
	inv.TokenIDs = slices.Clone(inv.TokenIDs)
	t.st.invoices[inv.ID] = inv
	return nil
}

func (t *memTx) InsertInvoiceLine(_ context.Context, l invoices.Line) error {
	t.st.invoiceLines[l.InvoiceID] = append(t.st.invoiceLines[l.InvoiceID], l)
	return nil
}

func (t *memTx) GetInvoiceForUpdate(_ context.Context, id string) (invoices.Invoice, error) {
	inv, ok := t.st.invoices[id]
	if !ok {
		return invoices.Invoice{}, invoices.ErrNotFound
	}
	return inv, nil
}

func (t *memTx) SaveInvoiceDiscount(_ context.Context, id string, discount decimal.Decimal) error {
	inv, ok := t.st.invoices[id]
	if !ok {
		return invoices.ErrNotFound
	}
	inv.DiscountGiven = discount
	t.st.invoices[id] = inv
	return nil
}

func compareSKU(a, b catalog.SKU) int {
	return cmp.Or(
		cmp.Compare(a.ProductID, b.ProductID),
		cmp.Compare(a.Size, b.Size),
		cmp.Compare(a.Color, b.Color),
	)
}
