package inventory

import (
	"context"
	"time"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
)

// Movement describes a quantity moving between stock pools.
type Movement struct {
	Type     TransactionType
	SKU      catalog.SKU
	Quantity int64
}

// Post appends a log entry for sku inside tx. The SKU must have an inventory record.
func Post(ctx context.Context, tx TxRepository, typ TransactionType, sku catalog.SKU, quantity int64, at time.Time) (LogEntry, error) {
	if !typ.Valid() {
		return LogEntry{}, ErrUnknownTransactionType
	}
	if quantity <= 0 {
		return LogEntry{}, ErrInvalidQuantity
	}
	if _, err := tx.GetRecordForUpdate(ctx, sku); err != nil {
		return LogEntry{}, err
	}
	seq, err := tx.NextTransactionSeq(ctx)
	if err != nil {
		return LogEntry{}, err
	}
	entry := LogEntry{
		Seq:      seq,
		ID:       FormatTransactionID(seq),
		Type:     typ,
		SKU:      sku,
		Quantity: quantity,
		At:       at,
	}
	if err := tx.AppendLog(ctx, entry); err != nil {
		return LogEntry{}, err
	}
	return entry, nil
}

// Apply performs a movement on the SKU's record and logs it. The movement type decides
// which pools change; a movement that would drive a pool negative fails without effect.
func Apply(ctx context.Context, tx TxRepository, m Movement, at time.Time) (Record, LogEntry, error) {
	deltas, ok := movementDeltas[m.Type]
	if !ok {
		return Record{}, LogEntry{}, ErrUnknownTransactionType
	}
	if m.Quantity <= 0 {
		return Record{}, LogEntry{}, ErrInvalidQuantity
	}
	rec, err := tx.GetRecordForUpdate(ctx, m.SKU)
	if err != nil {
		return Record{}, LogEntry{}, err
	}
	rec.Stored += deltas[0] * m.Quantity
	rec.Displayed += deltas[1] * m.Quantity
	if rec.Stored < 0 {
		return Record{}, LogEntry{}, ErrInsufficientStored
	}
	if rec.Displayed < 0 {
		return Record{}, LogEntry{}, ErrInsufficientDisplayed
	}
	rec.UpdatedAt = at
	if err := tx.SaveRecord(ctx, rec); err != nil {
		return Record{}, LogEntry{}, err
	}
	entry, err := Post(ctx, tx, m.Type, m.SKU, m.Quantity, at)
	if err != nil {
		return Record{}, LogEntry{}, err
	}
	return rec, entry, nil
}

// ReceiptThreshold is the threshold given to a record created by a supplier delivery:
// max(1, round(q/10)) with halves rounded up.
func ReceiptThreshold(quantity int64) int64 {
	t := (quantity + 5) / 10
	if t < 1 {
		return 1
	}
	return t
}

// RaisedThreshold lifts current to at least ceil(q/10).
func RaisedThreshold(current, quantity int64) int64 {
	t := (quantity + 9) / 10
	if t > current {
		return t
	}
	return current
}
