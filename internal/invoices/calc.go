package invoices

import "github.com/shopspring/decimal"

// DefaultTaxRate is the VAT rate applied when none is configured.
var DefaultTaxRate = decimal.RequireFromString("0.13")

var hundred = decimal.NewFromInt(100)

// Amounts are the computed money fields of one invoice line.
type Amounts struct {
	Discount      decimal.Decimal
	AfterDiscount decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
}

// ComputeLine prices quantity units at unitPrice less discountPercent, then adds tax.
// Every intermediate amount is rounded half-up to two places.
func ComputeLine(quantity int64, unitPrice, discountPercent, taxRate decimal.Decimal) Amounts {
	gross := decimal.NewFromInt(quantity).Mul(unitPrice)
	discount := gross.Mul(discountPercent).Div(hundred).Round(2)
	after := gross.Sub(discount).Round(2)
	tax := after.Mul(taxRate).Round(2)
	return Amounts{
		Discount:      discount,
		AfterDiscount: after,
		Tax:           tax,
		Total:         after.Add(tax),
	}
}

// Totals accumulates invoice header amounts.
type Totals struct {
	Total    decimal.Decimal
	Discount decimal.Decimal
}

// Add folds one line into the totals.
func (t Totals) Add(a Amounts) Totals {
	return Totals{
		Total:    t.Total.Add(a.Total),
		Discount: t.Discount.Add(a.Discount),
	}
}
