package orders

import (
	"fmt"
	"time"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// Status values derived from the terminal flags.
const (
	StatusPlaced    = "placed"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Order is a supplier purchase order header.
type Order struct {
	Seq       int64     `json:"-"`
	ID        string    `json:"order_id"`
	OrderDate time.Time `json:"order_date"`
	Delivered bool      `json:"delivered"`
	Cancelled bool      `json:"cancelled"`
}

// Status renders the order state.
func (o Order) Status() string {
	switch {
	case o.Delivered:
		return StatusDelivered
	case o.Cancelled:
		return StatusCancelled
	default:
		return StatusPlaced
	}
}

// Terminal returns the error describing why o can no longer change, or nil.
func (o Order) Terminal() error {
	switch {
	case o.Delivered:
		return ErrAlreadyDelivered
	case o.Cancelled:
		return ErrAlreadyCancelled
	default:
		return nil
	}
}

// Line is one SKU of an order.
type Line struct {
	OrderID  string      `json:"order_id"`
	SKU      catalog.SKU `json:"sku"`
	Quantity int64       `json:"quantity"`
}

// LineView is a Line joined with its catalog name.
type LineView struct {
	Line
	Name     string `json:"name"`
	UnitType string `json:"unit_type"`
}

// LineInput is a requested order line.
type LineInput struct {
	SKU      catalog.SKU `json:"sku"`
	Quantity int64       `json:"quantity"`
}

// Details is an order with its lines.
type Details struct {
	Order
	Status string     `json:"status"`
	Lines  []LineView `json:"lines"`
}

// StatusView reports the terminal flags of an order.
type StatusView struct {
	OrderID   string `json:"order_id"`
	Delivered bool   `json:"delivered"`
	Cancelled bool   `json:"cancelled"`
}

// FormatOrderID renders an order sequence number.
func FormatOrderID(seq int64) string {
	return fmt.Sprintf("ORD-%010d", seq)
}

// MergeLines validates quantities and sums duplicate SKUs, keeping first-seen order.
func MergeLines(lines []LineInput) ([]LineInput, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	index := make(map[catalog.SKU]int, len(lines))
	merged := make([]LineInput, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		sku := l.SKU.Normalize()
		if !sku.Valid() {
			return nil, catalog.ErrInvalidSKU
		}
		if i, ok := index[sku]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[sku] = len(merged)
		merged = append(merged, LineInput{SKU: sku, Quantity: l.Quantity})
	}
	return merged, nil
}

var (
	// ErrNotFound indicates an unknown order id.
	ErrNotFound = shared.NotFound("ORDER_NOT_FOUND", "orders: order not found")
	// ErrSkuNotFound indicates an order line references a SKU outside the catalog.
	ErrSkuNotFound = shared.NotFound("SKU_NOT_FOUND", "orders: sku not found in catalog")
	// ErrInvalidQuantity indicates a non-positive line quantity.
	ErrInvalidQuantity = shared.Validation("INVALID_QUANTITY", "orders: quantity must be positive")
	// ErrEmptyOrder indicates an order without lines.
	ErrEmptyOrder = shared.Validation("EMPTY_ORDER", "orders: at least one line is required")
	// ErrAlreadyDelivered indicates the order was received.
	ErrAlreadyDelivered = shared.Conflict("ALREADY_DELIVERED", "orders: order already delivered")
	// ErrAlreadyCancelled indicates the order was cancelled.
	ErrAlreadyCancelled = shared.Conflict("ALREADY_CANCELLED", "orders: order already cancelled")
)
