package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatSaleNumber(t *testing.T) {
	day := time.Date(2026, 8, 29, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "V20260829-0001", FormatSaleNumber(day, 1))
	assert.Equal(t, "V20260829-0042", FormatSaleNumber(day, 42))
	assert.Equal(t, "V20260829-12345", FormatSaleNumber(day, 12345))
}

func TestValidPaymentMethod(t *testing.T) {
	for _, m := range []string{PaymentCash, PaymentCard, PaymentTransfer, PaymentPix, PaymentMultiple} {
		assert.True(t, ValidPaymentMethod(m), "method=%s", m)
	}
	assert.False(t, ValidPaymentMethod("check"))
	assert.False(t, ValidPaymentMethod(""))
}

func TestTotalsConsistent(t *testing.T) {
	sale := Sale{
		Subtotal: decimal.RequireFromString("20.00"),
		Tax:      decimal.RequireFromString("2.00"),
		Discount: decimal.RequireFromString("5.00"),
		Total:    decimal.RequireFromString("17.00"),
	}
	assert.True(t, sale.TotalsConsistent())

	sale.Total = decimal.RequireFromString("17.01")
	assert.False(t, sale.TotalsConsistent())
}

func TestSaleAge(t *testing.T) {
	createdAt := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	sale := Sale{CreatedAt: createdAt}

	now := createdAt.Add(23 * time.Hour)
	assert.Equal(t, 23*time.Hour, sale.Age(now))
}
