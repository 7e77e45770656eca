package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type RecordMovementRequest struct {
	Type     string `json:"type"`
	Quantity int    `json:"quantity"`
	// UnitCost overrides the catalog cost for this movement (e.g. receiving
	// goods at a negotiated price). When nil the product's current cost is
	// captured.
	UnitCost     *decimal.Decimal `json:"unitCost,omitempty"`
	FromLocation *string          `json:"fromLocation,omitempty"`
	ToLocation   *string          `json:"toLocation,omitempty"`
	Note         string           `json:"note,omitempty"`
}

type LedgerEntryResponse struct {
	ID               uint            `json:"id"`
	ProductID        int             `json:"productId"`
	Type             string          `json:"type"`
	Quantity         int             `json:"quantity"`
	PreviousQuantity int             `json:"previousQuantity"`
	NewQuantity      int             `json:"newQuantity"`
	UnitCost         decimal.Decimal `json:"unitCost"`
	TotalValue       decimal.Decimal `json:"totalValue"`
	ReferenceID      *uint           `json:"referenceId,omitempty"`
	ReferenceType    *string         `json:"referenceType,omitempty"`
	FromLocation     *string         `json:"fromLocation,omitempty"`
	ToLocation       *string         `json:"toLocation,omitempty"`
	Note             string          `json:"note,omitempty"`
	CreatedBy        string          `json:"createdBy"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type AvailabilityResponse struct {
	ProductID       int  `json:"productId"`
	Requested       int  `json:"requested"`
	Available       bool `json:"available"`
	CurrentQuantity int  `json:"currentQuantity"`
	Shortfall       int  `json:"shortfall"`
}
