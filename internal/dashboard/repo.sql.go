package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs dashboard aggregates against PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SalesBetween aggregates invoices dated in [from, to).
func (r *Repository) SalesBetween(ctx context.Context, from, to time.Time) (SalesWindow, error) {
	var w SalesWindow
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(SUM(invoice_total), 0)
FROM invoices WHERE invoice_date >= $1 AND invoice_date < $2`, from, to).Scan(&w.Invoices, &w.Total)
	return w, err
}

// Counts loads the store-wide record counts.
func (r *Repository) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := r.pool.QueryRow(ctx, `SELECT
	(SELECT COUNT(*) FROM products),
	(SELECT COUNT(*) FROM invoices),
	(SELECT COUNT(*) FROM orders WHERE NOT delivered AND NOT cancelled),
	(SELECT COUNT(*) FROM orders WHERE delivered),
	(SELECT COUNT(*) FROM orders WHERE cancelled),
	(SELECT COUNT(*) FROM token_holdings),
	(SELECT COALESCE(SUM(quantity), 0) FROM token_holdings),
	(SELECT COUNT(DISTINCT token_id) FROM token_holdings),
	(SELECT COUNT(*) FROM tokens t WHERE t.assigned AND NOT EXISTS (SELECT 1 FROM token_holdings h WHERE h.token_id = t.token_id)),
	(SELECT COUNT(*) FROM inventory WHERE stored_qty <= store_threshold)`).Scan(
		&c.Products, &c.Invoices, &c.OrdersPlaced, &c.OrdersReceived, &c.OrdersCancelled,
		&c.HoldingLines, &c.HeldUnits, &c.PendingTokens, &c.EmptyTokens, &c.LowStock)
	return c, err
}
