package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DrawerStatusOpen   = "open"
	DrawerStatusClosed = "closed"
)

// CashDrawer is one operator's cash-tracking session. At most one open
// drawer may exist per owner at any time.
type CashDrawer struct {
	ID             string
	Owner          string
	Status         string
	OpeningBalance decimal.Decimal
	// ExpectedBalance = opening + sum of committed cash sales since open.
	ExpectedBalance decimal.Decimal
	ClosingBalance  *decimal.Decimal
	// Difference = closing - expected. Negative is a shortage, positive an
	// overage; it is reported, never corrected.
	Difference *decimal.Decimal
	OpenedAt   time.Time
	ClosedAt   *time.Time
}

func (d CashDrawer) IsOpen() bool {
	return d.Status == DrawerStatusOpen
}

// ReconciliationDifference computes closing - expected for a declared
// closing balance.
func (d CashDrawer) ReconciliationDifference(closing decimal.Decimal) decimal.Decimal {
	return closing.Sub(d.ExpectedBalance)
}
