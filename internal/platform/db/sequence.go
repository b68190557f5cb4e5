package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Sequence names stored in id_sequences.
const (
	SeqTransaction = "inventory_transactions"
	SeqOrder       = "orders"
	SeqInvoice     = "invoices"
)

// NextSequence allocates the next value of a named sequence inside tx. The first
// allocation seeds the counter from max(seq)+1 of the entity table; the row lock taken
// by the upsert serialises concurrent allocators until tx ends.
func NextSequence(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	switch name {
	case SeqTransaction, SeqOrder, SeqInvoice:
	default:
		return 0, fmt.Errorf("platform/db: unknown sequence %q", name)
	}
	query := fmt.Sprintf(`INSERT INTO id_sequences (name, value)
VALUES ($1, (SELECT COALESCE(MAX(seq), -1) + 1 FROM %s))
ON CONFLICT (name) DO UPDATE SET value = id_sequences.value + 1
RETURNING value`, name)
	var value int64
	if err := tx.QueryRow(ctx, query, name).Scan(&value); err != nil {
		return 0, fmt.Errorf("platform/db: next sequence %s: %w", name, err)
	}
	return value, nil
}
