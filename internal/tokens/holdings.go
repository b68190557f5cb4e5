package tokens

import (
	"context"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
)

// RequireAssigned locks the token and fails unless it is handed out.
func RequireAssigned(ctx context.Context, tx TxRepository, id string) (Token, error) {
	t, err := tx.GetTokenForUpdate(ctx, id)
	if err != nil {
		return Token{}, err
	}
	if !t.Assigned {
		return Token{}, ErrNotAssigned
	}
	return t, nil
}

// Hold adds quantity units of sku to the token's holdings.
func Hold(ctx context.Context, tx TxRepository, id string, sku catalog.SKU, quantity int64) (Holding, error) {
	if quantity <= 0 {
		return Holding{}, ErrInvalidQuantity
	}
	return tx.UpsertHolding(ctx, id, sku, quantity)
}

// Unhold removes the whole holding of sku from the token and returns its quantity.
func Unhold(ctx context.Context, tx TxRepository, id string, sku catalog.SKU) (int64, error) {
	h, err := tx.GetHoldingForUpdate(ctx, id, sku)
	if err != nil {
		return 0, err
	}
	if h.Quantity <= 0 {
		return 0, ErrNoSuchHolding
	}
	if err := tx.DeleteHolding(ctx, id, sku); err != nil {
		return 0, err
	}
	return h.Quantity, nil
}

// checkNoHoldings fails with ErrHasHoldings when the token still holds products.
func checkNoHoldings(ctx context.Context, tx TxRepository, id string) error {
	n, err := tx.CountTokenHoldings(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrHasHoldings
	}
	return nil
}

// Bill ties the tokens to an invoice, frees them and drops their holdings.
func Bill(ctx context.Context, tx TxRepository, ids []string, invoiceID string) error {
	for _, id := range ids {
		t, err := tx.GetTokenForUpdate(ctx, id)
		if err != nil {
			return err
		}
		inv := invoiceID
		t.Assigned = false
		t.InvoiceID = &inv
		if err := tx.SaveToken(ctx, t); err != nil {
			return err
		}
		if err := tx.DeleteTokenHoldings(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
