package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CheckoutItem struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

type CheckoutRequest struct {
	Items         []CheckoutItem   `json:"items"`
	CustomerID    *uint            `json:"customerId,omitempty"`
	PaymentMethod string           `json:"paymentMethod"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
}

type SaleItemDTO struct {
	ProductID int             `json:"productId"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	Tax       decimal.Decimal `json:"tax"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type SaleResponse struct {
	TraceID       string          `json:"traceId"`
	ID            uint            `json:"id"`
	Number        string          `json:"number"`
	Items         []SaleItemDTO   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
	CustomerID    *uint           `json:"customerId,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type CancelSaleRequest struct {
	Reason string `json:"reason"`
}
