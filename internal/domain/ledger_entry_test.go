package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStockDelta(t *testing.T) {
	assert.Equal(t, 5, StockDelta(MovementEntry, 5))
	assert.Equal(t, -3, StockDelta(MovementSale, -3))
	assert.Equal(t, -2, StockDelta(MovementAdjustment, -2))
	assert.Equal(t, 2, StockDelta(MovementAdjustment, 2))
	// Transfers relocate stock, total is unchanged.
	assert.Equal(t, 0, StockDelta(MovementTransfer, 4))
}

func TestQuantitySignValid(t *testing.T) {
	cases := []struct {
		movementType MovementType
		quantity     int
		valid        bool
	}{
		{MovementEntry, 5, true},
		{MovementEntry, -5, false},
		{MovementInitial, 10, true},
		{MovementReturn, 2, true},
		{MovementReturn, -2, false},
		{MovementSale, -3, true},
		{MovementSale, 3, false},
		{MovementWithdrawal, -1, true},
		{MovementLoss, -1, true},
		{MovementLoss, 1, false},
		{MovementAdjustment, 7, true},
		{MovementAdjustment, -7, true},
		{MovementAdjustment, 0, false},
		{MovementTransfer, 4, true},
		{MovementTransfer, -4, false},
		{MovementType("bogus"), 1, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.valid, QuantitySignValid(tc.movementType, tc.quantity),
			"type=%s qty=%d", tc.movementType, tc.quantity)
	}
}

func TestValidMovementType(t *testing.T) {
	for _, mt := range []MovementType{
		MovementEntry, MovementWithdrawal, MovementAdjustment, MovementInitial,
		MovementSale, MovementReturn, MovementLoss, MovementTransfer,
	} {
		assert.True(t, ValidMovementType(mt), "type=%s", mt)
	}
	assert.False(t, ValidMovementType(MovementType("restock")))
}

func TestMovementValue_UsesAbsoluteQuantity(t *testing.T) {
	cost := decimal.RequireFromString("2.50")

	assert.True(t, MovementValue(4, cost).Equal(decimal.RequireFromString("10.00")))
	assert.True(t, MovementValue(-4, cost).Equal(decimal.RequireFromString("10.00")))
}
