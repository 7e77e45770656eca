package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type OpenDrawerRequest struct {
	OpeningBalance decimal.Decimal `json:"openingBalance"`
}

type CloseDrawerRequest struct {
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

type DrawerResponse struct {
	ID              string           `json:"id"`
	Owner           string           `json:"owner"`
	Status          string           `json:"status"`
	OpeningBalance  decimal.Decimal  `json:"openingBalance"`
	ExpectedBalance decimal.Decimal  `json:"expectedBalance"`
	ClosingBalance  *decimal.Decimal `json:"closingBalance,omitempty"`
	Difference      *decimal.Decimal `json:"difference,omitempty"`
	OpenedAt        time.Time        `json:"openedAt"`
	ClosedAt        *time.Time       `json:"closedAt,omitempty"`
}

type CloseDrawerResponse struct {
	ID              string          `json:"id"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	ClosingBalance  decimal.Decimal `json:"closingBalance"`
	Difference      decimal.Decimal `json:"difference"`
	ClosedAt        time.Time       `json:"closedAt"`
}
