package orders

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/db"
)

// Statements are the order table operations available inside a transaction.
type Statements interface {
	NextOrderSeq(ctx context.Context) (int64, error)
	InsertOrder(ctx context.Context, o Order) error
	InsertOrderLine(ctx context.Context, l Line) error
	GetOrderForUpdate(ctx context.Context, id string) (Order, error)
	SaveOrder(ctx context.Context, o Order) error
	ListOrderLines(ctx context.Context, id string) ([]Line, error)
}

// TxRepository spans catalog, inventory and order statements on one transaction.
type TxRepository interface {
	catalog.TxRepository
	inventory.TxRepository
	Statements
}

// Repository persists orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type (
	catalogTx   = catalog.TxRepository
	inventoryTx = inventory.TxRepository
)

type txRepository struct {
	catalogTx
	inventoryTx
	tx pgx.Tx
}

// BindTx exposes catalog, inventory and order statements on an open transaction.
func BindTx(tx pgx.Tx) TxRepository {
	return &txRepository{
		catalogTx:   catalog.BindTx(tx),
		inventoryTx: inventory.BindTx(tx),
		tx:          tx,
	}
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("orders repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, BindTx(tx))
	})
}

const orderColumns = `seq, order_id, order_date, delivered, cancelled`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	if err := row.Scan(&o.Seq, &o.ID, &o.OrderDate, &o.Delivered, &o.Cancelled); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

// LookupOrder loads one order header.
func (r *Repository) LookupOrder(ctx context.Context, id string) (Order, error) {
	return scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id=$1`, id))
}

// ListOrders returns orders placed in [from, to); zero bounds are open.
func (r *Repository) ListOrders(ctx context.Context, from, to time.Time) ([]Order, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+orderColumns+` FROM orders
WHERE order_date >= COALESCE($1::timestamptz, '-infinity'::timestamptz)
AND order_date < COALESCE($2::timestamptz, 'infinity'::timestamptz)
ORDER BY seq DESC`, nullTime(from), nullTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// ListLineViews returns an order's lines joined with product names.
func (r *Repository) ListLineViews(ctx context.Context, id string) ([]LineView, error) {
	rows, err := r.pool.Query(ctx, `SELECT l.order_id, l.product_id, l.size, l.color, l.quantity,
COALESCE(p.name, ''), COALESCE(p.unit_type, 'pcs')
FROM order_lines l
LEFT JOIN products p ON p.product_id = l.product_id AND p.size = l.size AND p.color = l.color
WHERE l.order_id=$1
ORDER BY l.line_no`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LineView{}
	for rows.Next() {
		var v LineView
		if err := rows.Scan(&v.OrderID, &v.SKU.ProductID, &v.SKU.Size, &v.SKU.Color, &v.Quantity, &v.Name, &v.UnitType); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *txRepository) NextOrderSeq(ctx context.Context) (int64, error) {
	return db.NextSequence(ctx, r.tx, db.SeqOrder)
}

func (r *txRepository) InsertOrder(ctx context.Context, o Order) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO orders (seq, order_id, order_date, delivered, cancelled) VALUES ($1,$2,$3,$4,$5)`,
		o.Seq, o.ID, o.OrderDate, o.Delivered, o.Cancelled)
	return err
}

func (r *txRepository) InsertOrderLine(ctx context.Context, l Line) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO order_lines (order_id, product_id, size, color, quantity) VALUES ($1,$2,$3,$4,$5)`,
		l.OrderID, l.SKU.ProductID, l.SKU.Size, l.SKU.Color, l.Quantity)
	return err
}

func (r *txRepository) GetOrderForUpdate(ctx context.Context, id string) (Order, error) {
	return scanOrder(r.tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_id=$1 FOR UPDATE`, id))
}

func (r *txRepository) SaveOrder(ctx context.Context, o Order) error {
	tag, err := r.tx.Exec(ctx, `UPDATE orders SET delivered=$2, cancelled=$3 WHERE order_id=$1`, o.ID, o.Delivered, o.Cancelled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) ListOrderLines(ctx context.Context, id string) ([]Line, error) {
	rows, err := r.tx.Query(ctx, `SELECT order_id, product_id, size, color, quantity FROM order_lines WHERE order_id=$1 ORDER BY line_no`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.OrderID, &l.SKU.ProductID, &l.SKU.Size, &l.SKU.Color, &l.Quantity); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
