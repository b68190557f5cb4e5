package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/db"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetRecordForUpdate(ctx context.Context, sku catalog.SKU) (Record, error)
	InsertRecord(ctx context.Context, rec Record) error
	SaveRecord(ctx context.Context, rec Record) error
	NextTransactionSeq(ctx context.Context) (int64, error)
	AppendLog(ctx context.Context, entry LogEntry) error
}

type txRepository struct {
	tx pgx.Tx
}

// BindTx exposes the inventory statements on an open transaction.
func BindTx(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, BindTx(tx))
	})
}

// LookupRecord loads the stock levels of one SKU.
func (r *Repository) LookupRecord(ctx context.Context, sku catalog.SKU) (Record, error) {
	return scanRecord(r.pool.QueryRow(ctx, `SELECT product_id, size, color, stored_qty, displayed_qty, store_threshold, updated_at
FROM inventory WHERE product_id=$1 AND size=$2 AND color=$3`, sku.ProductID, sku.Size, sku.Color))
}

// ListRecords returns every inventory record joined with product names.
func (r *Repository) ListRecords(ctx context.Context) ([]RecordView, error) {
	return r.queryViews(ctx, `SELECT i.product_id, i.size, i.color, i.stored_qty, i.displayed_qty, i.store_threshold, i.updated_at,
COALESCE(p.name, ''), COALESCE(p.unit_type, 'pcs')
FROM inventory i
LEFT JOIN products p ON p.product_id = i.product_id AND p.size = i.size AND p.color = i.color
ORDER BY i.product_id, i.size, i.color`)
}

// ListLowStock returns records whose stored quantity is at or below threshold.
func (r *Repository) ListLowStock(ctx context.Context) ([]RecordView, error) {
	return r.queryViews(ctx, `SELECT i.product_id, i.size, i.color, i.stored_qty, i.displayed_qty, i.store_threshold, i.updated_at,
COALESCE(p.name, ''), COALESCE(p.unit_type, 'pcs')
FROM inventory i
LEFT JOIN products p ON p.product_id = i.product_id AND p.size = i.size AND p.color = i.color
WHERE i.stored_qty <= i.store_threshold
ORDER BY i.stored_qty ASC, i.product_id`)
}

func (r *Repository) queryViews(ctx context.Context, query string) ([]RecordView, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := []RecordView{}
	for rows.Next() {
		var v RecordView
		if err := rows.Scan(&v.SKU.ProductID, &v.SKU.Size, &v.SKU.Color, &v.Stored, &v.Displayed, &v.Threshold, &v.UpdatedAt, &v.Name, &v.UnitType); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

const logWhere = `WHERE ($1::text IS NULL OR (product_id=$1 AND size=$2 AND color=$3))
AND occurred_at >= COALESCE($4::timestamptz, '-infinity'::timestamptz)
AND occurred_at < COALESCE($5::timestamptz, 'infinity'::timestamptz)`

func logArgs(filter TransactionFilter) []any {
	var productID, size, color any
	if filter.SKU != nil {
		productID, size, color = filter.SKU.ProductID, filter.SKU.Size, filter.SKU.Color
	}
	return []any{productID, size, color, nullTime(filter.From), nullTime(filter.To)}
}

// CountLog counts transaction log entries matching filter, ignoring paging.
func (r *Repository) CountLog(ctx context.Context, filter TransactionFilter) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_transactions `+logWhere, logArgs(filter)...).Scan(&total)
	return total, err
}

// ListLog returns transaction log entries matching filter, oldest first.
func (r *Repository) ListLog(ctx context.Context, filter TransactionFilter) ([]LogEntry, error) {
	var limit any
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	args := append(logArgs(filter), limit, filter.Offset)
	rows, err := r.pool.Query(ctx, `SELECT seq, transaction_id, transaction_type, product_id, size, color, quantity, occurred_at
FROM inventory_transactions `+logWhere+`
ORDER BY seq ASC
LIMIT $6 OFFSET $7`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []LogEntry{}
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.Seq, &e.ID, &e.Type, &e.SKU.ProductID, &e.SKU.Size, &e.SKU.Color, &e.Quantity, &e.At); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.SKU.ProductID, &rec.SKU.Size, &rec.SKU.Color, &rec.Stored, &rec.Displayed, &rec.Threshold, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *txRepository) GetRecordForUpdate(ctx context.Context, sku catalog.SKU) (Record, error) {
	return scanRecord(r.tx.QueryRow(ctx, `SELECT product_id, size, color, stored_qty, displayed_qty, store_threshold, updated_at
FROM inventory WHERE product_id=$1 AND size=$2 AND color=$3 FOR UPDATE`, sku.ProductID, sku.Size, sku.Color))
}

func (r *txRepository) InsertRecord(ctx context.Context, rec Record) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO inventory (product_id, size, color, stored_qty, displayed_qty, store_threshold, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)`, rec.SKU.ProductID, rec.SKU.Size, rec.SKU.Color, rec.Stored, rec.Displayed, rec.Threshold, rec.UpdatedAt)
	return err
}

func (r *txRepository) SaveRecord(ctx context.Context, rec Record) error {
	tag, err := r.tx.Exec(ctx, `UPDATE inventory SET stored_qty=$4, displayed_qty=$5, store_threshold=$6, updated_at=$7
WHERE product_id=$1 AND size=$2 AND color=$3`, rec.SKU.ProductID, rec.SKU.Size, rec.SKU.Color, rec.Stored, rec.Displayed, rec.Threshold, rec.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (r *txRepository) NextTransactionSeq(ctx context.Context) (int64, error) {
	return db.NextSequence(ctx, r.tx, db.SeqTransaction)
}

func (r *txRepository) AppendLog(ctx context.Context, e LogEntry) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO inventory_transactions (seq, transaction_id, transaction_type, product_id, size, color, quantity, occurred_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`, e.Seq, e.ID, string(e.Type), e.SKU.ProductID, e.SKU.Size, e.SKU.Color, e.Quantity, e.At)
	return err
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
