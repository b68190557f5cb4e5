package counter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/db"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
)

// TxRepository spans catalog, inventory and token statements on one transaction.
type TxRepository interface {
	catalog.TxRepository
	inventory.TxRepository
	tokens.TxRepository
}

// Repository opens counter transactions on PostgreSQL.
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
	tokensTx    = tokens.TxRepository
)

type txRepository struct {
	catalogTx
	inventoryTx
	tokensTx
}

// BindTx exposes catalog, inventory and token statements on an open transaction.
func BindTx(tx pgx.Tx) TxRepository {
	return txRepository{
		catalogTx:   catalog.BindTx(tx),
		inventoryTx: inventory.BindTx(tx),
		tokensTx:    tokens.BindTx(tx),
	}
}

// WithTx executes the callback inside repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("counter repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, BindTx(tx))
	})
}
