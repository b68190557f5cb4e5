package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/counter"
	"github.com/laxmi-pos/laxmi-pos/internal/dashboard"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/invoices"
	"github.com/laxmi-pos/laxmi-pos/internal/orders"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
)

// CatalogRepository implements catalog.RepositoryPort.
type CatalogRepository struct{ s *Store }

// WithTx runs fn as one unit of work.
func (r *CatalogRepository) WithTx(ctx context.Context, fn func(context.Context, catalog.TxRepository) error) error {
	return r.s.withTx(ctx, func(tx *memTx) error { return fn(ctx, tx) })
}

// LookupProduct loads one SKU.
func (r *CatalogRepository) LookupProduct(_ context.Context, sku catalog.SKU) (catalog.Product, error) {
	var (
		p  catalog.Product
		ok bool
	)
	r.s.read(func(st *state) { p, ok = st.products[sku] })
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

// ListProducts returns the catalog ordered by SKU.
func (r *CatalogRepository) ListProducts(context.Context) ([]catalog.Product, error) {
	out := []catalog.Product{}
	r.s.read(func(st *state) {
		for _, p := range st.products {
			out = append(out, p)
		}
	})
	slices.SortFunc(out, func(a, b catalog.Product) int { return compareSKU(a.SKU, b.SKU) })
	return out, nil
}

// FindProductIDsByName returns the distinct product ids carrying name.
func (r *CatalogRepository) FindProductIDsByName(_ context.Context, name string) ([]string, error) {
	seen := map[string]struct{}{}
	r.s.read(func(st *state) {
		for sku, p := range st.products {
			if p.Name == name {
				seen[sku.ProductID] = struct{}{}
			}
		}
	})
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// InventoryRepository implements inventory.RepositoryPort.
type InventoryRepository struct{ s *Store }

// WithTx runs fn as one unit of work.
func (r *InventoryRepository) WithTx(ctx context.Context, fn func(context.Context, inventory.TxRepository) error) error {
	return r.s.withTx(ctx, func(tx *memTx) error { return fn(ctx, tx) })
}

// LookupRecord loads the stock levels of one SKU.
func (r *InventoryRepository) LookupRecord(_ context.Context, sku catalog.SKU) (inventory.Record, error) {
	var (
		rec inventory.Record
		ok  bool
	)
	r.s.read(func(st *state) { rec, ok = st.records[sku] })
	if !ok {
		return inventory.Record{}, inventory.ErrRecordNotFound
	}
	return rec, nil
}

// ListRecords returns every record joined with product names.
func (r *InventoryRepository) ListRecords(context.Context) ([]inventory.RecordView, error) {
	return r.views(func(inventory.Record) bool { return true }), nil
}

// ListLowStock returns records at or below their threshold, emptiest first.
func (r *InventoryRepository) ListLowStock(context.Context) ([]inventory.RecordView, error) {
	views := r.views(inventory.Record.BelowThreshold)
	slices.SortStableFunc(views, func(a, b inventory.RecordView) int { return cmp.Compare(a.Stored, b.Stored) })
	return views, nil
}

func (r *InventoryRepository) views(keep func(inventory.Record) bool) []inventory.RecordView {
	out := []inventory.RecordView{}
	r.s.read(func(st *state) {
		for sku, rec := range st.records {
			if !keep(rec) {
				continue
			}
			v := inventory.RecordView{Record: rec, UnitType: catalog.UnitTypePieces}
			if p, ok := st.products[sku]; ok {
				v.Name = p.Name
				v.UnitType = p.UnitType
			}
			out = append(out, v)
		}
	})
	slices.SortFunc(out, func(a, b inventory.RecordView) int { return compareSKU(a.SKU, b.SKU) })
	return out
}

func (r *InventoryRepository) filtered(filter inventory.TransactionFilter) []inventory.LogEntry {
	out := []inventory.LogEntry{}
	r.s.read(func(st *state) {
		for _, e := range st.log {
			if filter.SKU != nil && e.SKU != *filter.SKU {
				continue
			}
			if !filter.From.IsZero() && e.At.Before(filter.From) {
				continue
			}
			if !filter.To.IsZero() && !e.At.Before(filter.To) {
				continue
			}
			out = append(out, e)
		}
	})
	return out
}

// ListLog returns matching log entries, oldest first.
func (r *InventoryRepository) ListLog(_ context.Context, filter inventory.TransactionFilter) ([]inventory.LogEntry, error) {
	out := r.filtered(filter)
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []inventory.LogEntry{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CountLog counts matching log entries ignoring paging.
func (r *InventoryRepository) CountLog(_ context.Context, filter inventory.TransactionFilter) (int, error) {
	return len(r.filtered(filter)), nil
}

// TokenRepository implements tokens.RepositoryPort.
type TokenRepository struct{ s *Store }

// WithTx runs fn as one unit of work.
func (r *TokenRepository) WithTx(ctx context.Context, fn func(context.Context, tokens.TxRepository) error) error {
	return r.s.withTx(ctx, func(tx *memTx) error { return fn(ctx, tx) })
}

// LookupToken loads one token.
func (r *TokenRepository) LookupToken(_ context.Context, id string) (tokens.Token, error) {
	var (
		t  tokens.Token
		ok bool
	)
	r.s.read(func(st *state) { t, ok = st.tokens[id] })
	if !ok {
		return tokens.Token{}, tokens.ErrNotFound
	}
	return t, nil
}

// TokenHasHoldings reports whether the token holds anything.
func (r *TokenRepository) TokenHasHoldings(_ context.Context, id string) (bool, error) {
	var held bool
	r.s.read(func(st *state) { held = len(st.holdings[id]) > 0 })
	return held, nil
}

// ListTokens returns every token in pool order.
func (r *TokenRepository) ListTokens(context.Context) ([]tokens.Token, error) {
	out := []tokens.Token{}
	r.s.read(func(st *state) {
		for _, t := range st.tokens {
			out = append(out, t)
		}
	})
	slices.SortFunc(out, func(a, b tokens.Token) int { return cmp.Compare(a.Number, b.Number) })
	return out, nil
}

func (r *TokenRepository) ids(keep func(st *state, t tokens.Token) bool) []string {
	all, _ := r.ListTokens(context.Background())
	out := []string{}
	r.s.read(func(st *state) {
		for _, t := range all {
			if keep(st, t) {
				out = append(out, t.ID)
			}
		}
	})
	return out
}

// ListPendingTokenIDs returns tokens holding at least one product.
func (r *TokenRepository) ListPendingTokenIDs(context.Context) ([]string, error) {
	return r.ids(func(st *state, t tokens.Token) bool { return len(st.holdings[t.ID]) > 0 }), nil
}

// ListEmptyAssignedIDs returns assigned tokens without holdings.
func (r *TokenRepository) ListEmptyAssignedIDs(context.Context) ([]string, error) {
	return r.ids(func(st *state, t tokens.Token) bool { return t.Assigned && len(st.holdings[t.ID]) == 0 }), nil
}

// ListHoldingViews returns a token's holdings joined with product names.
func (r *TokenRepository) ListHoldingViews(_ context.Context, id string) ([]tokens.HoldingView, error) {
	out := []tokens.HoldingView{}
	r.s.read(func(st *state) {
		for sku, qty := range st.holdings[id] {
			v := tokens.HoldingView{
				Holding:  tokens.Holding{TokenID: id, SKU: sku, Quantity: qty},
				UnitType: catalog.UnitTypePieces,
			}
			if p, ok := st.products[sku]; ok {
				v.Name = p.Name
				v.UnitType = p.UnitType
			}
			out = append(out, v)
		}
	})
	slices.SortFunc(out, func(a, b tokens.HoldingView) int { return compareSKU(a.SKU, b.SKU) })
	return out, nil
}

// CounterRepository implements counter.RepositoryPort.
type CounterRepository struct{ s *Store }

// WithTx runs fn as one unit of work.
func (r *CounterRepository) WithTx(ctx context.Context, fn func(context.Context, counter.TxRepository) error) error {
	return r.s.withTx(ctx, func(tx *memTx) error { return fn(ctx, tx) })
}

// OrderRepository implements orders.RepositoryPort.
type OrderRepository struct{ s *Store }

// WithTx runs fn as one unit of work.
func (r *OrderRepository) WithTx(ctx context.Context, fn func(context.Context, orders.TxRepository) error) error {
	return r.s.withTx(ctx, func(tx *memTx) error { return fn(ctx, tx) })
}

// LookupOrder loads one order header.
func (r *OrderRepository) LookupOrder(_ context.Context, id string) (orders.Order, error) {
	var (
		o  orders.Order
		ok bool
	)
	r.s.read(func(st *state) { o, ok = st.orders[id] })
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

// ListOrders returns orders placed in [from, to), newest first; zero bounds are open.
func (r *OrderRepository) ListOrders(_ context.Context, from, to time.Time) ([]orders.Order, error) {
	out := []orders.Order{}
	r.s.read(func(st *state) {
		for _, o := range st.orders {
			if within(o.OrderDate, from, to) {
				out = append(out, o)
			}
		}
	})
	slices.SortFunc(out, func(a, b orders.Order) int { return cmp.Compare(b.Seq, a.Seq) })
	return out, nil
}

// ListLineViews returns an order's lines joined with product names.
func (r *OrderRepository) ListLineViews(_ context.Context, id string) ([]orders.LineView, error) {
	out := []orders.LineView{}
	r.s.read(func(st *state) {
		for _, l := range st.orderLines[id] {
			v := orders.LineView{Line: l, UnitType: catalog.UnitTypePieces}
			if p, ok := st.products[l.SKU]; ok {
				v.Name = p.Name
				v.UnitType = p.UnitType
			}
			out = append(out, v)
		}
	})
	return out, nil
}

// InvoiceRepository implements invoices.RepositoryPort.
type InvoiceRepository struct{ s *Store }

// WithTx runs fn as one unit of work.
func (r *InvoiceRepository) WithTx(ctx context.Context, fn func(context.Context, invoices.TxRepository) error) error {
	return r.s.withTx(ctx, func(tx *memTx) error { return fn(ctx, tx) })
}

// LookupInvoice loads one invoice header.
func (r *InvoiceRepository) LookupInvoice(_ context.Context, id string) (invoices.Invoice, error) {
	var (
		inv invoices.Invoice
		ok  bool
	)
	r.s.read(func(st *state) { inv, ok = st.invoices[id] })
	if !ok {
		return invoices.Invoice{}, invoices.ErrNotFound
	}
	return inv, nil
}

// ListInvoices returns invoices dated in [from, to), oldest first.
func (r *InvoiceRepository) ListInvoices(_ context.Context, from, to time.Time) ([]invoices.Invoice, error) {
	out := []invoices.Invoice{}
	r.s.read(func(st *state) {
		for _, inv := range st.invoices {
			if within(inv.InvoiceDate, from, to) {
				out = append(out, inv)
			}
		}
	})
	slices.SortFunc(out, func(a, b invoices.Invoice) int { return cmp.Compare(a.Seq, b.Seq) })
	return out, nil
}

// ListInvoiceLines returns one invoice's lines, or every line newest invoice first when id is empty.
func (r *InvoiceRepository) ListInvoiceLines(_ context.Context, id string) ([]invoices.Line, error) {
	out := []invoices.Line{}
	r.s.read(func(st *state) {
		if id != "" {
			out = append(out, st.invoiceLines[id]...)
			return
		}
		ids := make([]string, 0, len(st.invoiceLines))
		for invID := range st.invoiceLines {
			ids = append(ids, invID)
		}
		slices.Sort(ids)
		slices.Reverse(ids)
		for _, invID := range ids {
			out = append(out, st.invoiceLines[invID]...)
		}
	})
	return out, nil
}

// DashboardRepository implements dashboard.RepositoryPort.
type DashboardRepository struct{ s *Store }

// SalesBetween aggregates invoices dated in [from, to).
func (r *DashboardRepository) SalesBetween(_ context.Context, from, to time.Time) (dashboard.SalesWindow, error) {
	w := dashboard.SalesWindow{Total: decimal.Zero}
	r.s.read(func(st *state) {
		for _, inv := range st.invoices {
			if within(inv.InvoiceDate, from, to) {
				w.Invoices++
				w.Total = w.Total.Add(inv.Total)
			}
		}
	})
	return w, nil
}

// Counts loads the store-wide record counts.
func (r *DashboardRepository) Counts(context.Context) (dashboard.Counts, error) {
	var c dashboard.Counts
	r.s.read(func(st *state) {
		c.Products = len(st.products)
		c.Invoices = len(st.invoices)
		for _, o := range st.orders {
			switch {
			case o.Delivered:
				c.OrdersReceived++
			case o.Cancelled:
				c.OrdersCancelled++
			default:
				c.OrdersPlaced++
			}
		}
		for _, held := range st.holdings {
			if len(held) == 0 {
				continue
			}
			c.PendingTokens++
			c.HoldingLines += len(held)
			for _, qty := range held {
				c.HeldUnits += qty
			}
		}
		for _, t := range st.tokens {
			if t.Assigned && len(st.holdings[t.ID]) == 0 {
				c.EmptyTokens++
			}
		}
		for _, rec := range st.records {
			if rec.BelowThreshold() {
				c.LowStock++
			}
		}
	})
	return c, nil
}

func within(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
