// Package pricing computes cart totals. It is a pure function over the
// line snapshot: no catalog reads, no persistence, no clock.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	apperrors "bree/internal/errors"
)

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
	// TaxRate is a percentage, per product, e.g. 10 for 10%.
	TaxRate decimal.Decimal
}

type LineTotals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
}

type Totals struct {
	Lines    []LineTotals
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

var oneHundred = decimal.NewFromInt(100)

// Calculate computes subtotal, per-line tax and grand total for a cart.
// Tax is applied per line at the product's own rate, rounded to 2 decimals
// per line, so the sale snapshot and the grand total agree exactly.
// Total = subtotal + tax - discount; a discount exceeding subtotal + tax is
// rejected rather than producing a negative total.
func Calculate(lines []Line, discount decimal.Decimal) (*Totals, error) {
	if len(lines) == 0 {
		return nil, apperrors.NewValidationError("cart must contain at least one line")
	}
	if discount.IsNegative() {
		return nil, apperrors.NewValidationError("discount must not be negative")
	}

	totals := &Totals{
		Lines:    make([]LineTotals, 0, len(lines)),
		Subtotal: decimal.Zero,
		Tax:      decimal.Zero,
		Discount: discount.Round(2),
	}

	for i, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("line %d: quantity must be greater than zero", i))
		}
		if line.UnitPrice.IsNegative() {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("line %d: unit price must not be negative", i))
		}
		if line.TaxRate.IsNegative() {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("line %d: tax rate must not be negative", i))
		}

		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).Round(2)
		tax := subtotal.Mul(line.TaxRate).Div(oneHundred).Round(2)

		totals.Lines = append(totals.Lines, LineTotals{Subtotal: subtotal, Tax: tax})
		totals.Subtotal = totals.Subtotal.Add(subtotal)
		totals.Tax = totals.Tax.Add(tax)
	}

	gross := totals.Subtotal.Add(totals.Tax)
	if totals.Discount.GreaterThan(gross) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("discount %s exceeds cart total %s", totals.Discount.StringFixed(2), gross.StringFixed(2)))
	}

	totals.Total = gross.Sub(totals.Discount)
	return totals, nil
}
