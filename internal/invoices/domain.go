package invoices

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// PaymentMode is how a customer settled an invoice.
type PaymentMode string

// Supported payment modes.
const (
	PaymentCash   PaymentMode = "cash"
	PaymentCard   PaymentMode = "card"
	PaymentWallet PaymentMode = "wallet"
)

// Valid reports whether m is a supported payment mode.
func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentWallet:
		return true
	}
	return false
}

// Invoice is a billed aggregation of token holdings.
type Invoice struct {
	Seq           int64           `json:"-"`
	ID            string          `json:"invoice_id"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	Total         decimal.Decimal `json:"invoice_total"`
	DiscountGiven decimal.Decimal `json:"discount_given"`
	PaymentMode   PaymentMode     `json:"payment_mode"`
	TokenIDs      []string        `json:"token_ids"`
}

// Line is the pricing snapshot of one SKU on an invoice.
type Line struct {
	InvoiceID       string          `json:"invoice_id"`
	SKU             catalog.SKU     `json:"sku"`
	Name            string          `json:"name"`
	Quantity        int64           `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	LineTotal       decimal.Decimal `json:"line_total"`
}

// Details is an invoice with its lines.
type Details struct {
	Invoice
	Lines []Line `json:"lines"`
}

// GenerateInput describes the tokens to bill.
type GenerateInput struct {
	TokenIDs    []string    `json:"token_ids" validate:"required,min=1,dive,required"`
	PaymentMode PaymentMode `json:"payment_mode" validate:"required"`
}

// FormatInvoiceID renders an invoice sequence number.
func FormatInvoiceID(seq int64) string {
	return fmt.Sprintf("INV-%010d", seq)
}

var (
	// ErrNotFound indicates an unknown invoice id.
	ErrNotFound = shared.NotFound("INVOICE_NOT_FOUND", "invoices: invoice not found")
	// ErrTokenNotAssigned indicates a token to bill is not handed out.
	ErrTokenNotAssigned = shared.Conflict("TOKEN_NOT_ASSIGNED", "invoices: token is not assigned")
	// ErrNoProducts indicates none of the tokens hold products.
	ErrNoProducts = shared.Validation("NO_PRODUCTS", "invoices: tokens hold no products")
	// ErrInvalidPaymentMode indicates a payment mode outside cash, card and wallet.
	ErrInvalidPaymentMode = shared.Validation("INVALID_PAYMENT_MODE", "invoices: payment mode must be cash, card or wallet")
	// ErrInvalidDiscount indicates a negative discount adjustment.
	ErrInvalidDiscount = shared.Validation("INVALID_DISCOUNT", "invoices: discount must not be negative")
)
