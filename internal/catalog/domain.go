package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// UnitTypePieces is the only unit type products are sold in.
const UnitTypePieces = "pcs"

// DefaultThreshold is the store threshold given to SKUs admitted without one.
const DefaultThreshold int64 = 5

// SKU identifies one stocked variant of a product family.
type SKU struct {
	ProductID string `json:"product_id" validate:"required,max=32"`
	Size      string `json:"size" validate:"required,max=16"`
	Color     string `json:"color" validate:"required,max=32"`
}

// String renders the SKU as product/size/color.
func (s SKU) String() string {
	return s.ProductID + "/" + s.Size + "/" + s.Color
}

// Normalize trims surrounding whitespace from every component.
func (s SKU) Normalize() SKU {
	return SKU{
		ProductID: strings.TrimSpace(s.ProductID),
		Size:      strings.TrimSpace(s.Size),
		Color:     strings.TrimSpace(s.Color),
	}
}

// Valid reports whether all components are present.
func (s SKU) Valid() bool {
	n := s.Normalize()
	return n.ProductID != "" && n.Size != "" && n.Color != ""
}

// Product is the catalog entry of one SKU.
type Product struct {
	SKU
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	UnitType    string          `json:"unit_type"`
	Discount    decimal.Decimal `json:"discount"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AdmitInput describes a new SKU entering the catalog.
type AdmitInput struct {
	SKU         SKU
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
}

var (
	// ErrDuplicateSKU indicates the SKU is already in the catalog.
	ErrDuplicateSKU = shared.Conflict("DUPLICATE_SKU", "catalog: sku already exists")
	// ErrInvalidSKU indicates a missing product id, size or color.
	ErrInvalidSKU = shared.Validation("INVALID_SKU", "catalog: product id, size and color are required")
	// ErrInvalidName indicates an empty product name.
	ErrInvalidName = shared.Validation("INVALID_NAME", "catalog: product name is required")
	// ErrInvalidPrice indicates a non-positive unit price.
	ErrInvalidPrice = shared.Validation("INVALID_PRICE", "catalog: unit price must be positive")
	// ErrInvalidDiscount indicates a discount outside 0..100 percent.
	ErrInvalidDiscount = shared.Validation("INVALID_DISCOUNT", "catalog: discount must be between 0 and 100 percent")
	// ErrCategoryNotAllowed indicates the name policy rejected the product.
	ErrCategoryNotAllowed = shared.Validation("CATEGORY_NOT_ALLOWED", "catalog: product category not carried by this store")
	// ErrNotFound indicates the SKU is not in the catalog.
	ErrNotFound = shared.NotFound("SKU_NOT_FOUND", "catalog: sku not found")
	// ErrProductNotFound indicates no SKU of the product family exists.
	ErrProductNotFound = shared.NotFound("PRODUCT_NOT_FOUND", "catalog: product not found")
)

var hundred = decimal.NewFromInt(100)

// ValidateDiscount checks a discount percentage.
func ValidateDiscount(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	return nil
}

// RoundMoney rounds half-up to the 2 places the ledger stores for prices and discount percentages.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ValidatePrice checks a unit price as it will be stored.
func ValidatePrice(p decimal.Decimal) error {
	if !RoundMoney(p).IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}
