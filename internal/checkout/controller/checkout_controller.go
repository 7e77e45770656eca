package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"bree/internal/domain"
	"bree/internal/dto"
	apperrors "bree/internal/errors"
)

type CheckoutUseCase interface {
	Checkout(ctx context.Context, actor string, req dto.CheckoutRequest) (*domain.Sale, error)
}

type CancelSaleUseCase interface {
	CancelSale(ctx context.Context, actor string, saleID uint, reason string) (*domain.Sale, error)
}

type CheckoutController struct {
	checkoutUC CheckoutUseCase
	cancelUC   CancelSaleUseCase
	logger     *zap.Logger
}

func NewCheckoutController(checkoutUC CheckoutUseCase, cancelUC CancelSaleUseCase, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{
		checkoutUC: checkoutUC,
		cancelUC:   cancelUC,
		logger:     logger,
	}
}

func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeError(w, traceID, http.StatusBadRequest, "BAD_REQUEST", "request body must be valid JSON", nil)
		return
	}

	sale, err := c.checkoutUC.Checkout(r.Context(), r.Header.Get("X-Operator"), req)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, toSaleResponse(traceID, sale))
}

func (c *CheckoutController) CancelSale(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	saleID, err := strconv.ParseUint(chi.URLParam(r, "saleId"), 10, 64)
	if err != nil || saleID == 0 {
		writeError(w, traceID, http.StatusUnprocessableEntity, "VALIDATION", "saleId must be a positive integer", nil)
		return
	}

	var req dto.CancelSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeError(w, traceID, http.StatusBadRequest, "BAD_REQUEST", "request body must be valid JSON", nil)
		return
	}

	sale, err := c.cancelUC.CancelSale(r.Context(), r.Header.Get("X-Operator"), uint(saleID), req.Reason)
	if err != nil {
		c.handleError(w, traceID, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, toSaleResponse(traceID, sale))
}

func (c *CheckoutController) handleError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		writeError(w, traceID, http.StatusUnprocessableEntity, "VALIDATION", ve.Message, ve.Details)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		writeError(w, traceID, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsInsufficientStockError(err); ok {
		writeError(w, traceID, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsDrawerNotOpenError(err); ok {
		writeError(w, traceID, http.StatusConflict, "DRAWER_NOT_OPEN", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsCancellationWindowExpiredError(err); ok {
		writeError(w, traceID, http.StatusConflict, "CANCELLATION_WINDOW_EXPIRED", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		writeError(w, traceID, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	writeError(w, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

func toSaleResponse(traceID string, sale *domain.Sale) dto.SaleResponse {
	items := make([]dto.SaleItemDTO, len(sale.Items))
	for i, item := range sale.Items {
		items[i] = dto.SaleItemDTO{
			ProductID: item.ProductID,
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			TaxRate:   item.TaxRate,
			Tax:       item.Tax,
			Subtotal:  item.Subtotal,
		}
	}

	return dto.SaleResponse{
		TraceID:       traceID,
		ID:            sale.ID,
		Number:        sale.Number,
		Items:         items,
		Subtotal:      sale.Subtotal,
		Tax:           sale.Tax,
		Discount:      sale.Discount,
		Total:         sale.Total,
		PaymentMethod: sale.PaymentMethod,
		Status:        sale.Status,
		CustomerID:    sale.CustomerID,
		Notes:         sale.Notes,
		CreatedAt:     sale.CreatedAt,
	}
}

type errorBody struct {
	TraceID   string                       `json:"traceId"`
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

func writeError(w http.ResponseWriter, traceID string, status int, code, message string, details []apperrors.ValidationDetail) {
	writeJSON(w, status, errorBody{
		TraceID:   traceID,
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
