package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laxmi-pos/laxmi-pos/internal/platform/db"
)

// Repository persists catalog data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by service.
type TxRepository interface {
	GetProduct(ctx context.Context, sku SKU) (Product, error)
	GetProductForUpdate(ctx context.Context, sku SKU) (Product, error)
	InsertProduct(ctx context.Context, p Product) error
	UpdateProduct(ctx context.Context, p Product) error
	UpdateFamilyDescription(ctx context.Context, productID, description string) (int64, error)
	CreateStockRecord(ctx context.Context, sku SKU, threshold int64) error
}

type txRepository struct {
	tx pgx.Tx
}

// BindTx exposes the catalog statements on an open transaction.
func BindTx(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("catalog repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, BindTx(tx))
	})
}

const productColumns = `product_id, size, color, name, description, unit_price, unit_type, discount, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ProductID, &p.Size, &p.Color, &p.Name, &p.Description, &p.UnitPrice, &p.UnitType, &p.Discount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// LookupProduct loads one SKU outside of a transaction.
func (r *Repository) LookupProduct(ctx context.Context, sku SKU) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_id=$1 AND size=$2 AND color=$3`, sku.ProductID, sku.Size, sku.Color))
}

// ListProducts returns the whole catalog.
func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY product_id, size, color`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// FindProductIDsByName returns the distinct product ids carrying the exact name.
func (r *Repository) FindProductIDsByName(ctx context.Context, name string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT product_id FROM products WHERE name=$1 ORDER BY product_id`, name)
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

func (r *txRepository) GetProduct(ctx context.Context, sku SKU) (Product, error) {
	return scanProduct(r.tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_id=$1 AND size=$2 AND color=$3`, sku.ProductID, sku.Size, sku.Color))
}

func (r *txRepository) GetProductForUpdate(ctx context.Context, sku SKU) (Product, error) {
	return scanProduct(r.tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE product_id=$1 AND size=$2 AND color=$3 FOR UPDATE`, sku.ProductID, sku.Size, sku.Color))
}

func (r *txRepository) InsertProduct(ctx context.Context, p Product) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO products (product_id, size, color, name, description, unit_price, unit_type, discount, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)`, p.ProductID, p.Size, p.Color, p.Name, p.Description, p.UnitPrice, p.UnitType, p.Discount, p.CreatedAt)
	if db.IsUniqueViolation(err) {
		return ErrDuplicateSKU
	}
	return err
}

func (r *txRepository) UpdateProduct(ctx context.Context, p Product) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET name=$4, description=$5, unit_price=$6, discount=$7, updated_at=NOW()
WHERE product_id=$1 AND size=$2 AND color=$3`, p.ProductID, p.Size, p.Color, p.Name, p.Description, p.UnitPrice, p.Discount)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) UpdateFamilyDescription(ctx context.Context, productID, description string) (int64, error) {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET description=$2, updated_at=NOW() WHERE product_id=$1`, productID, description)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *txRepository) CreateStockRecord(ctx context.Context, sku SKU, threshold int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO inventory (product_id, size, color, stored_qty, displayed_qty, store_threshold, updated_at)
VALUES ($1,$2,$3,0,0,$4,NOW())
ON CONFLICT (product_id, size, color) DO NOTHING`, sku.ProductID, sku.Size, sku.Color, threshold)
	return err
}
