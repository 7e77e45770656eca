package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestReconciliationDifference(t *testing.T) {
	drawer := CashDrawer{
		Status:          DrawerStatusOpen,
		OpeningBalance:  decimal.RequireFromString("100.00"),
		ExpectedBalance: decimal.RequireFromString("122.00"),
	}

	// Shortage: the operator counted less than expected.
	diff := drawer.ReconciliationDifference(decimal.RequireFromString("120.00"))
	assert.True(t, diff.Equal(decimal.RequireFromString("-2.00")), "difference = %s", diff)

	// Overage.
	diff = drawer.ReconciliationDifference(decimal.RequireFromString("125.50"))
	assert.True(t, diff.Equal(decimal.RequireFromString("3.50")))
}

func TestIsOpen(t *testing.T) {
	assert.True(t, CashDrawer{Status: DrawerStatusOpen}.IsOpen())
	assert.False(t, CashDrawer{Status: DrawerStatusClosed}.IsOpen())
}
