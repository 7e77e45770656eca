package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bree/internal/errors"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculate_SingleLineWithTax(t *testing.T) {
	// cart = [{qty=2, price=10.00, tax=10%}], discount=0
	totals, err := Calculate([]Line{
		{UnitPrice: d("10.00"), Quantity: 2, TaxRate: d("10")},
	}, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(d("20.00")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.Tax.Equal(d("2.00")), "tax = %s", totals.Tax)
	assert.True(t, totals.Total.Equal(d("22.00")), "total = %s", totals.Total)
}

func TestCalculate_PerLineTaxRates(t *testing.T) {
	totals, err := Calculate([]Line{
		{UnitPrice: d("10.00"), Quantity: 1, TaxRate: d("10")},
		{UnitPrice: d("5.00"), Quantity: 3, TaxRate: d("21")},
		{UnitPrice: d("2.50"), Quantity: 4, TaxRate: decimal.Zero},
	}, decimal.Zero)

	require.NoError(t, err)
	// 10.00 + 15.00 + 10.00
	assert.True(t, totals.Subtotal.Equal(d("35.00")))
	// 1.00 + 3.15 + 0.00, each line rounded independently
	assert.True(t, totals.Tax.Equal(d("4.15")))
	assert.True(t, totals.Total.Equal(d("39.15")))
}

func TestCalculate_RoundingPerLine(t *testing.T) {
	// 3 × 0.33 = 0.99; 10% tax = 0.099 rounds to 0.10
	totals, err := Calculate([]Line{
		{UnitPrice: d("0.33"), Quantity: 3, TaxRate: d("10")},
	}, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, totals.Subtotal.Equal(d("0.99")))
	assert.True(t, totals.Tax.Equal(d("0.10")))
	assert.True(t, totals.Total.Equal(d("1.09")))
}

func TestCalculate_DiscountApplied(t *testing.T) {
	totals, err := Calculate([]Line{
		{UnitPrice: d("10.00"), Quantity: 2, TaxRate: d("10")},
	}, d("5.00"))

	require.NoError(t, err)
	assert.True(t, totals.Total.Equal(d("17.00")))
	assert.True(t, totals.Discount.Equal(d("5.00")))
}

func TestCalculate_DiscountEqualToGrossIsAllowed(t *testing.T) {
	totals, err := Calculate([]Line{
		{UnitPrice: d("10.00"), Quantity: 2, TaxRate: d("10")},
	}, d("22.00"))

	require.NoError(t, err)
	assert.True(t, totals.Total.IsZero())
}

func TestCalculate_DiscountExceedingGrossRejected(t *testing.T) {
	_, err := Calculate([]Line{
		{UnitPrice: d("10.00"), Quantity: 2, TaxRate: d("10")},
	}, d("22.01"))

	require.Error(t, err)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok, "expected ValidationError, got %T", err)
}

func TestCalculate_InvalidInput(t *testing.T) {
	cases := []struct {
		name     string
		lines    []Line
		discount decimal.Decimal
	}{
		{"empty cart", nil, decimal.Zero},
		{"zero quantity", []Line{{UnitPrice: d("1.00"), Quantity: 0, TaxRate: decimal.Zero}}, decimal.Zero},
		{"negative quantity", []Line{{UnitPrice: d("1.00"), Quantity: -1, TaxRate: decimal.Zero}}, decimal.Zero},
		{"negative price", []Line{{UnitPrice: d("-1.00"), Quantity: 1, TaxRate: decimal.Zero}}, decimal.Zero},
		{"negative tax rate", []Line{{UnitPrice: d("1.00"), Quantity: 1, TaxRate: d("-10")}}, decimal.Zero},
		{"negative discount", []Line{{UnitPrice: d("1.00"), Quantity: 1, TaxRate: decimal.Zero}}, d("-1.00")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Calculate(tc.lines, tc.discount)
			require.Error(t, err)
			_, ok := apperrors.IsValidationError(err)
			assert.True(t, ok, "expected ValidationError, got %T", err)
		})
	}
}

func TestCalculate_NoSideEffectsOnInput(t *testing.T) {
	lines := []Line{{UnitPrice: d("10.00"), Quantity: 2, TaxRate: d("10")}}
	before := lines[0]

	_, err := Calculate(lines, decimal.Zero)

	require.NoError(t, err)
	assert.True(t, before.UnitPrice.Equal(lines[0].UnitPrice))
	assert.Equal(t, before.Quantity, lines[0].Quantity)
}
