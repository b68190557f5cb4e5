package tokens

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/db"
)

// Repository persists tokens and their holdings in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	ListTokenNumbers(ctx context.Context) ([]int, error)
	InsertToken(ctx context.Context, t Token) error
	GetTokenForUpdate(ctx context.Context, id string) (Token, error)
	ClaimFreeToken(ctx context.Context) (Token, error)
	SaveToken(ctx context.Context, t Token) error
	DeleteToken(ctx context.Context, id string) error
	CountTokenHoldings(ctx context.Context, id string) (int, error)
	GetHoldingForUpdate(ctx context.Context, id string, sku catalog.SKU) (Holding, error)
	UpsertHolding(ctx context.Context, id string, sku catalog.SKU, quantity int64) (Holding, error)
	DeleteHolding(ctx context.Context, id string, sku catalog.SKU) error
	ListHoldingsForTokens(ctx context.Context, ids []string) ([]Holding, error)
	DeleteTokenHoldings(ctx context.Context, id string) error
}

type txRepository struct {
	tx pgx.Tx
}

// BindTx exposes the token statements on an open transaction.
func BindTx(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("tokens repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, BindTx(tx))
	})
}

const tokenColumns = `token_id, number, assigned, invoice_id`

func scanToken(row pgx.Row) (Token, error) {
	var t Token
	if err := row.Scan(&t.ID, &t.Number, &t.Assigned, &t.InvoiceID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Token{}, ErrNotFound
		}
		return Token{}, err
	}
	return t, nil
}

// LookupToken loads a token outside of a transaction.
func (r *Repository) LookupToken(ctx context.Context, id string) (Token, error) {
	return scanToken(r.pool.QueryRow(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE token_id=$1`, id))
}

// TokenHasHoldings reports whether any holding row references the token.
func (r *Repository) TokenHasHoldings(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM token_holdings WHERE token_id=$1)`, id).Scan(&exists)
	return exists, err
}

// ListTokens returns every registered token in pool order.
func (r *Repository) ListTokens(ctx context.Context) ([]Token, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+tokenColumns+` FROM tokens ORDER BY number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Token{}
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListPendingTokenIDs returns tokens holding at least one product.
func (r *Repository) ListPendingTokenIDs(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx, `SELECT t.token_id FROM tokens t
WHERE EXISTS (SELECT 1 FROM token_holdings h WHERE h.token_id = t.token_id)
ORDER BY t.number`)
}

// ListEmptyAssignedIDs returns assigned tokens without holdings.
func (r *Repository) ListEmptyAssignedIDs(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx, `SELECT t.token_id FROM tokens t
WHERE t.assigned AND NOT EXISTS (SELECT 1 FROM token_holdings h WHERE h.token_id = t.token_id)
ORDER BY t.number`)
}

func (r *Repository) queryIDs(ctx context.Context, query string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ListHoldingViews returns a token's holdings joined with product names.
func (r *Repository) ListHoldingViews(ctx context.Context, id string) ([]HoldingView, error) {
	rows, err := r.pool.Query(ctx, `SELECT h.token_id, h.product_id, h.size, h.color, h.quantity,
COALESCE(p.name, ''), COALESCE(p.unit_type, 'pcs')
FROM token_holdings h
LEFT JOIN products p ON p.product_id = h.product_id AND p.size = h.size AND p.color = h.color
WHERE h.token_id=$1
ORDER BY h.product_id, h.size, h.color`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	views := []HoldingView{}
	for rows.Next() {
		var v HoldingView
		if err := rows.Scan(&v.TokenID, &v.SKU.ProductID, &v.SKU.Size, &v.SKU.Color, &v.Quantity, &v.Name, &v.UnitType); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *txRepository) ListTokenNumbers(ctx context.Context) ([]int, error) {
	rows, err := r.tx.Query(ctx, `SELECT number FROM tokens ORDER BY number FOR UPDATE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	numbers := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (r *txRepository) InsertToken(ctx context.Context, t Token) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO tokens (token_id, number, assigned, invoice_id) VALUES ($1,$2,$3,$4)`,
		t.ID, t.Number, t.Assigned, t.InvoiceID)
	if db.IsUniqueViolation(err) {
		return ErrPoolExhausted
	}
	return err
}

func (r *txRepository) GetTokenForUpdate(ctx context.Context, id string) (Token, error) {
	return scanToken(r.tx.QueryRow(ctx, `SELECT `+tokenColumns+` FROM tokens WHERE token_id=$1 FOR UPDATE`, id))
}

func (r *txRepository) ClaimFreeToken(ctx context.Context) (Token, error) {
	t, err := scanToken(r.tx.QueryRow(ctx, `SELECT `+tokenColumns+` FROM tokens
WHERE NOT assigned
ORDER BY number
LIMIT 1
FOR UPDATE SKIP LOCKED`))
	if errors.Is(err, ErrNotFound) {
		return Token{}, ErrNoneAvailable
	}
	return t, err
}

func (r *txRepository) SaveToken(ctx context.Context, t Token) error {
	tag, err := r.tx.Exec(ctx, `UPDATE tokens SET assigned=$2, invoice_id=$3 WHERE token_id=$1`, t.ID, t.Assigned, t.InvoiceID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) DeleteToken(ctx context.Context, id string) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM tokens WHERE token_id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) CountTokenHoldings(ctx context.Context, id string) (int, error) {
	var n int
	err := r.tx.QueryRow(ctx, `SELECT COUNT(*) FROM token_holdings WHERE token_id=$1`, id).Scan(&n)
	return n, err
}

func (r *txRepository) GetHoldingForUpdate(ctx context.Context, id string, sku catalog.SKU) (Holding, error) {
	h := Holding{TokenID: id, SKU: sku}
	err := r.tx.QueryRow(ctx, `SELECT quantity FROM token_holdings
WHERE token_id=$1 AND product_id=$2 AND size=$3 AND color=$4 FOR UPDATE`, id, sku.ProductID, sku.Size, sku.Color).Scan(&h.Quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return Holding{}, ErrNoSuchHolding
	}
	if err != nil {
		return Holding{}, err
	}
	return h, nil
}

func (r *txRepository) UpsertHolding(ctx context.Context, id string, sku catalog.SKU, quantity int64) (Holding, error) {
	h := Holding{TokenID: id, SKU: sku}
	err := r.tx.QueryRow(ctx, `INSERT INTO token_holdings (token_id, product_id, size, color, quantity)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (token_id, product_id, size, color) DO UPDATE SET quantity = token_holdings.quantity + EXCLUDED.quantity
RETURNING quantity`, id, sku.ProductID, sku.Size, sku.Color, quantity).Scan(&h.Quantity)
	if err != nil {
		return Holding{}, err
	}
	return h, nil
}

func (r *txRepository) DeleteHolding(ctx context.Context, id string, sku catalog.SKU) error {
	tag, err := r.tx.Exec(ctx, `DELETE FROM token_holdings WHERE token_id=$1 AND product_id=$2 AND size=$3 AND color=$4`,
		id, sku.ProductID, sku.Size, sku.Color)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNoSuchHolding
	}
	return nil
}

func (r *txRepository) ListHoldingsForTokens(ctx context.Context, ids []string) ([]Holding, error) {
	rows, err := r.tx.Query(ctx, `SELECT token_id, product_id, size, color, quantity FROM token_holdings
WHERE token_id = ANY($1)
ORDER BY product_id, size, color, token_id
FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Holding{}
	for rows.Next() {
		var h Holding
		if err := rows.Scan(&h.TokenID, &h.SKU.ProductID, &h.SKU.Size, &h.SKU.Color, &h.Quantity); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *txRepository) DeleteTokenHoldings(ctx context.Context, id string) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM token_holdings WHERE token_id=$1`, id)
	return err
}
