package inventory

import (
	"fmt"
	"time"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// TransactionType enumerates supported stock movements.
type TransactionType string

const (
	// TransactionCounterAdd returns held units to the counter.
	TransactionCounterAdd TransactionType = "COUNTER_ADD"
	// TransactionCounterSub moves counter units onto a token.
	TransactionCounterSub TransactionType = "COUNTER_SUB"
	// TransactionInventoryToCounter restocks the counter from the backroom.
	TransactionInventoryToCounter TransactionType = "INVENTORY_TO_COUNTER"
	// TransactionInventoryAdd records supplier deliveries.
	TransactionInventoryAdd TransactionType = "INVENTORY_ADD"
	// TransactionInventorySub records backroom write-offs.
	TransactionInventorySub TransactionType = "INVENTORY_SUB"
)

// Valid reports whether t is a known movement.
func (t TransactionType) Valid() bool {
	_, ok := movementDeltas[t]
	return ok
}

// movementDeltas gives the per-unit change of (stored, displayed) for each movement.
var movementDeltas = map[TransactionType][2]int64{
	TransactionCounterAdd:         {0, 1},
	TransactionCounterSub:         {0, -1},
	TransactionInventoryToCounter: {-1, 1},
	TransactionInventoryAdd:       {1, 0},
	TransactionInventorySub:       {-1, 0},
}

// Record holds the stock levels of one SKU.
type Record struct {
	SKU       catalog.SKU `json:"sku"`
	Stored    int64       `json:"stored_quantity"`
	Displayed int64       `json:"displayed_quantity"`
	Threshold int64       `json:"store_threshold"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// BelowThreshold reports whether backroom stock needs replenishing.
func (r Record) BelowThreshold() bool {
	return r.Stored <= r.Threshold
}

// RecordView is a Record joined with its catalog name.
type RecordView struct {
	Record
	Name     string `json:"name"`
	UnitType string `json:"unit_type"`
}

// Quantity is an amount of stock with its unit.
type Quantity struct {
	Value    int64  `json:"quantity"`
	UnitType string `json:"unit_type"`
}

// LogEntry is one immutable line of the stock transaction log.
type LogEntry struct {
	Seq      int64           `json:"-"`
	ID       string          `json:"transaction_id"`
	Type     TransactionType `json:"transaction_type"`
	SKU      catalog.SKU     `json:"sku"`
	Quantity int64           `json:"quantity"`
	At       time.Time       `json:"timestamp"`
}

// FormatTransactionID renders a log sequence number.
func FormatTransactionID(seq int64) string {
	return fmt.Sprintf("TRC-%010d", seq)
}

// TransactionFilter narrows transaction log listings. Zero values mean unbounded.
type TransactionFilter struct {
	SKU    *catalog.SKU
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

var (
	// ErrInvalidQuantity indicates a non-positive movement quantity.
	ErrInvalidQuantity = shared.Validation("INVALID_QUANTITY", "inventory: quantity must be positive")
	// ErrInvalidThreshold indicates a negative threshold.
	ErrInvalidThreshold = shared.Validation("INVALID_THRESHOLD", "inventory: threshold must be >= 0")
	// ErrUnknownTransactionType indicates an unsupported movement type.
	ErrUnknownTransactionType = shared.Validation("UNKNOWN_TRANSACTION_TYPE", "inventory: unknown transaction type")
	// ErrRecordNotFound indicates the SKU has no inventory record.
	ErrRecordNotFound = shared.NotFound("INVENTORY_NOT_FOUND", "inventory: no inventory record for sku")
	// ErrInsufficientStored triggered when backroom stock would go negative.
	ErrInsufficientStored = shared.Conflict("INSUFFICIENT_STORED", "inventory: insufficient stored quantity")
	// ErrInsufficientDisplayed triggered when counter stock would go negative.
	ErrInsufficientDisplayed = shared.Conflict("INSUFFICIENT_DISPLAYED", "inventory: insufficient displayed quantity")
)
