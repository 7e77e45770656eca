package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementEntry      MovementType = "entry"
	MovementWithdrawal MovementType = "withdrawal"
	MovementAdjustment MovementType = "adjustment"
	MovementInitial    MovementType = "initial"
	MovementSale       MovementType = "sale"
	MovementReturn     MovementType = "return"
	MovementLoss       MovementType = "loss"
	MovementTransfer   MovementType = "transfer"
)

const (
	ReferenceTypeSale             = "sale"
	ReferenceTypeSaleCancellation = "sale_cancellation"
	ReferenceTypeManual           = "manual"
)

// LedgerEntry is one immutable stock movement. Entries are append-only:
// reversals and corrections are new entries, never edits.
type LedgerEntry struct {
	ID               uint
	ProductID        int
	Type             MovementType
	Quantity         int // signed delta; transfers carry the moved amount but a zero net effect
	PreviousQuantity int
	NewQuantity      int
	// UnitCost is captured at movement time and never recomputed from the
	// catalog, so historical valuation survives later cost changes.
	UnitCost      decimal.Decimal
	TotalValue    decimal.Decimal
	ReferenceID   *uint
	ReferenceType *string
	FromLocation  *string
	ToLocation    *string
	Note          string
	CreatedBy     string
	CreatedAt     time.Time
}

// ValidMovementType reports whether t is one of the known movement types.
func ValidMovementType(t MovementType) bool {
	switch t {
	case MovementEntry, MovementWithdrawal, MovementAdjustment, MovementInitial,
		MovementSale, MovementReturn, MovementLoss, MovementTransfer:
		return true
	}
	return false
}

// StockDelta is the net effect of a movement of type t with signed quantity
// qty on the product's stock. The explicit type always wins over the sign:
// transfers relocate stock between locations and never change the total.
func StockDelta(t MovementType, qty int) int {
	if t == MovementTransfer {
		return 0
	}
	return qty
}

// QuantitySignValid reports whether the signed quantity is coherent with the
// movement type. Adjustments may go either way; transfers carry the moved
// amount as a positive quantity.
func QuantitySignValid(t MovementType, qty int) bool {
	switch t {
	case MovementEntry, MovementInitial, MovementReturn, MovementTransfer:
		return qty > 0
	case MovementWithdrawal, MovementSale, MovementLoss:
		return qty < 0
	case MovementAdjustment:
		return qty != 0
	}
	return false
}

// MovementValue is |qty| × unit cost, the monetary value recorded on the entry.
func MovementValue(qty int, unitCost decimal.Decimal) decimal.Decimal {
	if qty < 0 {
		qty = -qty
	}
	return unitCost.Mul(decimal.NewFromInt(int64(qty))).Round(2)
}
