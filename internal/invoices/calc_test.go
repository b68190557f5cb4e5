package invoices

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeLineWorkedExample(t *testing.T) {
	a := ComputeLine(3, dec("100.00"), dec("10"), DefaultTaxRate)
	require.Equal(t, "30.00", a.Discount.StringFixed(2))
	require.Equal(t, "270.00", a.AfterDiscount.StringFixed(2))
	require.Equal(t, "35.10", a.Tax.StringFixed(2))
	require.Equal(t, "305.10", a.Total.StringFixed(2))
}

func TestComputeLineRoundsHalfUp(t *testing.T) {
	// 1 x 0.05 at 10% = 0.005 discount, rounds up to 0.01.
	a := ComputeLine(1, dec("0.05"), dec("10"), decimal.Zero)
	require.Equal(t, "0.01", a.Discount.StringFixed(2))
	require.Equal(t, "0.04", a.AfterDiscount.StringFixed(2))

	// 1 x 0.50 taxed at 13% = 0.065, rounds up to 0.07.
	b := ComputeLine(1, dec("0.50"), decimal.Zero, DefaultTaxRate)
	require.Equal(t, "0.07", b.Tax.StringFixed(2))
	require.Equal(t, "0.57", b.Total.StringFixed(2))
}

func TestTotalsSumLines(t *testing.T) {
	var totals Totals
	totals = totals.Add(ComputeLine(3, dec("100.00"), dec("10"), DefaultTaxRate))
	totals = totals.Add(ComputeLine(2, dec("250.00"), decimal.Zero, DefaultTaxRate))
	require.Equal(t, "870.10", totals.Total.StringFixed(2))
	require.Equal(t, "30.00", totals.Discount.StringFixed(2))
}
