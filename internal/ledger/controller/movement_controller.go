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

type RecordMovementUseCase interface {
	RecordMovement(ctx context.Context, actor string, productID int, req dto.RecordMovementRequest) (*domain.LedgerEntry, error)
	CheckAvailability(ctx context.Context, productID int, requested int) (*dto.Availability, error)
	History(ctx context.Context, productID int, limit int) ([]domain.LedgerEntry, error)
}

type MovementController struct {
	useCase RecordMovementUseCase
	logger  *zap.Logger
}

func NewMovementController(useCase RecordMovementUseCase, logger *zap.Logger) *MovementController {
	return &MovementController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *MovementController) RecordMovement(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil || productID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION", "productId must be a positive integer", nil)
		return
	}

	var req dto.RecordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "request body must be valid JSON", nil)
		return
	}

	actor := r.Header.Get("X-Operator")

	entry, err := c.useCase.RecordMovement(r.Context(), actor, productID, req)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, toLedgerEntryResponse(*entry))
}

func (c *MovementController) History(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil || productID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION", "productId must be a positive integer", nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := c.useCase.History(r.Context(), productID, limit)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	responses := make([]dto.LedgerEntryResponse, len(entries))
	for i, entry := range entries {
		responses[i] = toLedgerEntryResponse(entry)
	}

	writeJSON(w, http.StatusOK, responses)
}

func (c *MovementController) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID, err := strconv.Atoi(chi.URLParam(r, "productId"))
	if err != nil || productID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION", "productId must be a positive integer", nil)
		return
	}

	requested, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION", "quantity must be a positive integer", nil)
		return
	}

	availability, err := c.useCase.CheckAvailability(r.Context(), productID, requested)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, dto.AvailabilityResponse{
		ProductID:       availability.ProductID,
		Requested:       availability.Requested,
		Available:       availability.Available,
		CurrentQuantity: availability.CurrentQuantity,
		Shortfall:       availability.Shortfall,
	})
}

func (c *MovementController) handleError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION", ve.Message, ve.Details)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsInsufficientStockError(err); ok {
		writeError(w, http.StatusConflict, "INSUFFICIENT_STOCK", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsConflictError(err); ok {
		writeError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

func toLedgerEntryResponse(e domain.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:               e.ID,
		ProductID:        e.ProductID,
		Type:             string(e.Type),
		Quantity:         e.Quantity,
		PreviousQuantity: e.PreviousQuantity,
		NewQuantity:      e.NewQuantity,
		UnitCost:         e.UnitCost,
		TotalValue:       e.TotalValue,
		ReferenceID:      e.ReferenceID,
		ReferenceType:    e.ReferenceType,
		FromLocation:     e.FromLocation,
		ToLocation:       e.ToLocation,
		Note:             e.Note,
		CreatedBy:        e.CreatedBy,
		CreatedAt:        e.CreatedAt,
	}
}

type errorBody struct {
	Code      string                       `json:"code"`
	Message   string                       `json:"message"`
	Details   []apperrors.ValidationDetail `json:"details,omitempty"`
	Timestamp time.Time                    `json:"timestamp"`
}

func writeError(w http.ResponseWriter, status int, code, message string, details []apperrors.ValidationDetail) {
	writeJSON(w, status, errorBody{
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
