package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SaleStatusPending   = "pending"
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
	SaleStatusRefunded  = "refunded"
)

const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentPix      = "pix"
	PaymentMultiple = "multiple"
)

// SaleItem is one line of the frozen snapshot persisted with the sale.
// Prices and tax rates are copied from the catalog at checkout time; later
// catalog changes must not alter historical totals.
type SaleItem struct {
	ProductID int             `json:"productId"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	Tax       decimal.Decimal `json:"tax"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type Sale struct {
	ID            uint
	Number        string
	Items         []SaleItem
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	Status        string
	CustomerID    *uint
	Operator      string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FormatSaleNumber renders the daily-sequential sale number, e.g.
// V20260829-0001. The sequence restarts every calendar day.
func FormatSaleNumber(day time.Time, seq int) string {
	return fmt.Sprintf("V%s-%04d", day.Format("20060102"), seq)
}

func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentPix, PaymentMultiple:
		return true
	}
	return false
}

// TotalsConsistent checks the commit-time invariant total = subtotal + tax - discount.
func (s Sale) TotalsConsistent() bool {
	return s.Subtotal.Add(s.Tax).Sub(s.Discount).Equal(s.Total)
}

func (s Sale) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}
