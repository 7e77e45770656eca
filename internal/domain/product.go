package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProductStatusActive       = "active"
	ProductStatusInactive     = "inactive"
	ProductStatusDiscontinued = "discontinued"
)

// Product.Stock is a cached projection of the ledger; it is only ever
// written through ledger appends, never directly.
type Product struct {
	ID               int
	SKU              string
	Name             string
	UnitPrice        decimal.Decimal
	UnitCost         decimal.Decimal
	Stock            int
	ReorderThreshold int
	// TaxRate is a percentage, e.g. 10 for 10%.
	TaxRate          decimal.Decimal
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (p Product) Sellable() bool {
	return p.Status == ProductStatusActive
}

func (p Product) BelowReorderThreshold() bool {
	return p.Stock <= p.ReorderThreshold
}
