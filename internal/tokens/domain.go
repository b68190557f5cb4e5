package tokens

import (
	"fmt"
	"strings"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// MaxPoolSize bounds the number of claim-check tokens a store may register.
const MaxPoolSize = 100

// Token is a physical claim-check standing in for a customer's basket.
type Token struct {
	ID        string  `json:"token_id"`
	Number    int     `json:"number"`
	Assigned  bool    `json:"assigned"`
	InvoiceID *string `json:"invoice_id,omitempty"`
}

// Free reports whether the token is unassigned and not tied to an invoice.
func (t Token) Free() bool {
	return !t.Assigned && t.InvoiceID == nil
}

// Holding is the quantity of one SKU parked on a token.
type Holding struct {
	TokenID  string      `json:"token_id"`
	SKU      catalog.SKU `json:"sku"`
	Quantity int64       `json:"quantity"`
}

// HoldingView is a Holding joined with its catalog name.
type HoldingView struct {
	Holding
	Name     string `json:"name"`
	UnitType string `json:"unit_type"`
}

// FormatTokenID renders a pool number.
func FormatTokenID(n int) string {
	return fmt.Sprintf("TOK-%02d", n)
}

// NormalizeID canonicalises user supplied token ids.
func NormalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// LowestFreeNumber returns the smallest number in [0, limit) missing from the ascending slice.
func LowestFreeNumber(taken []int, limit int) (int, bool) {
	next := 0
	for _, n := range taken {
		if n < next {
			continue
		}
		if n > next {
			break
		}
		next++
	}
	if next >= limit {
		return 0, false
	}
	return next, true
}

var (
	// ErrPoolExhausted indicates every token number is registered.
	ErrPoolExhausted = shared.Capacity("POOL_EXHAUSTED", "tokens: token pool exhausted")
	// ErrNoneAvailable indicates every registered token is in use.
	ErrNoneAvailable = shared.Capacity("NONE_AVAILABLE", "tokens: no free token available")
	// ErrHasHoldings indicates the token still holds products.
	ErrHasHoldings = shared.Conflict("TOKEN_HAS_HOLDINGS", "tokens: token still holds products")
	// ErrNotAssigned indicates the token is not handed out.
	ErrNotAssigned = shared.Conflict("TOKEN_NOT_ASSIGNED", "tokens: token is not assigned")
	// ErrStillAssigned indicates the token is handed out and cannot be removed.
	ErrStillAssigned = shared.Conflict("TOKEN_STILL_ASSIGNED", "tokens: token is still assigned")
	// ErrNotFound indicates an unknown token id.
	ErrNotFound = shared.NotFound("TOKEN_NOT_FOUND", "tokens: token not found")
	// ErrNoSuchHolding indicates the token holds none of the SKU.
	ErrNoSuchHolding = shared.NotFound("NO_SUCH_HOLDING", "tokens: token holds none of this sku")
	// ErrInvalidID indicates an empty token id.
	ErrInvalidID = shared.Validation("INVALID_TOKEN_ID", "tokens: token id required")
	// ErrInvalidQuantity indicates a non-positive holding quantity.
	ErrInvalidQuantity = shared.Validation("INVALID_QUANTITY", "tokens: quantity must be positive")
)
