package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is owned by customer management; this core only touches the
// purchase aggregates, transactionally with sale creation and cancellation.
type Customer struct {
	ID             uint
	Name           string
	TotalPurchases decimal.Decimal
	LastPurchase   *time.Time
}
