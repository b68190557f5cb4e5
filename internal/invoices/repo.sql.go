package invoices

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/db"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
)

// Statements are the invoice table operations available inside a transaction.
type Statements interface {
	NextInvoiceSeq(ctx context.Context) (int64, error)
	InsertInvoice(ctx context.Context, inv Invoice) error
	InsertInvoiceLine(ctx context.Context, l Line) error
	GetInvoiceForUpdate(ctx context.Context, id string) (Invoice, error)
	SaveInvoiceDiscount(ctx context.Context, id string, discount decimal.Decimal) error
}

// TxRepository spans catalog, token and invoice statements on one transaction.
type TxRepository interface {
	catalog.TxRepository
	tokens.TxRepository
	Statements
}

// Repository persists invoices in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type (
	catalogTx = catalog.TxRepository
	tokensTx  = tokens.TxRepository
)

type txRepository struct {
	catalogTx
	tokensTx
	tx pgx.Tx
}

// BindTx exposes catalog, token and invoice statements on an open transaction.
func BindTx(tx pgx.Tx) TxRepository {
	return &txRepository{
		catalogTx: catalog.BindTx(tx),
		tokensTx:  tokens.BindTx(tx),
		tx:        tx,
	}
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("invoices repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, BindTx(tx))
	})
}

const invoiceColumns = `seq, invoice_id, invoice_date, invoice_total, discount_given, payment_mode, token_ids`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	var mode string
	if err := row.Scan(&inv.Seq, &inv.ID, &inv.InvoiceDate, &inv.Total, &inv.DiscountGiven, &mode, &inv.TokenIDs); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Invoice{}, ErrNotFound
		}
		return Invoice{}, err
	}
	inv.PaymentMode = PaymentMode(mode)
	return inv, nil
}

// LookupInvoice loads one invoice header.
func (r *Repository) LookupInvoice(ctx context.Context, id string) (Invoice, error) {
	return scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id=$1`, id))
}

// ListInvoices returns invoices dated in [from, to), oldest first.
func (r *Repository) ListInvoices(ctx context.Context, from, to time.Time) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
WHERE invoice_date >= $1 AND invoice_date < $2
ORDER BY seq`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

const lineColumns = `invoice_id, product_id, size, color, name, quantity, unit_price, discount_percent, discount_amount, tax_amount, line_total`

// ListInvoiceLines returns the lines of one invoice, or of every invoice newest first when id is empty.
func (r *Repository) ListInvoiceLines(ctx context.Context, id string) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+lineColumns+` FROM invoice_lines
WHERE ($1 = '' OR invoice_id = $1)
ORDER BY invoice_id DESC, line_no`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.InvoiceID, &l.SKU.ProductID, &l.SKU.Size, &l.SKU.Color, &l.Name, &l.Quantity,
			&l.UnitPrice, &l.DiscountPercent, &l.DiscountAmount, &l.TaxAmount, &l.LineTotal); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *txRepository) NextInvoiceSeq(ctx context.Context) (int64, error) {
	return db.NextSequence(ctx, r.tx, db.SeqInvoice)
}

func (r *txRepository) InsertInvoice(ctx context.Context, inv Invoice) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO invoices (`+invoiceColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		inv.Seq, inv.ID, inv.InvoiceDate, inv.Total, inv.DiscountGiven, string(inv.PaymentMode), inv.TokenIDs)
	return err
}

func (r *txRepository) InsertInvoiceLine(ctx context.Context, l Line) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO invoice_lines (`+lineColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		l.InvoiceID, l.SKU.ProductID, l.SKU.Size, l.SKU.Color, l.Name, l.Quantity,
		l.UnitPrice, l.DiscountPercent, l.DiscountAmount, l.TaxAmount, l.LineTotal)
	return err
}

func (r *txRepository) GetInvoiceForUpdate(ctx context.Context, id string) (Invoice, error) {
	return scanInvoice(r.tx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE invoice_id=$1 FOR UPDATE`, id))
}

func (r *txRepository) SaveInvoiceDiscount(ctx context.Context, id string, discount decimal.Decimal) error {
	tag, err := r.tx.Exec(ctx, `UPDATE invoices SET discount_given=$2 WHERE invoice_id=$1`, id, discount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
