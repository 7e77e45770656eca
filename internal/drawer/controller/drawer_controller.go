package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bree/internal/domain"
	"bree/internal/dto"
	apperrors "bree/internal/errors"
)

type DrawerUseCase interface {
	Open(ctx context.Context, actor string, openingBalance decimal.Decimal) (*domain.CashDrawer, error)
	Current(ctx context.Context, actor string) (*domain.CashDrawer, error)
	Close(ctx context.Context, actor string, closingBalance decimal.Decimal) (*domain.CashDrawer, error)
}

type DrawerController struct {
	useCase DrawerUseCase
	logger  *zap.Logger
}

func NewDrawerController(useCase DrawerUseCase, logger *zap.Logger) *DrawerController {
	return &DrawerController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *DrawerController) Open(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.OpenDrawerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "request body must be valid JSON", nil)
		return
	}

	drawer, err := c.useCase.Open(r.Context(), r.Header.Get("X-Operator"), req.OpeningBalance)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, toDrawerResponse(drawer))
}

func (c *DrawerController) Current(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	drawer, err := c.useCase.Current(r.Context(), r.Header.Get("X-Operator"))
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, toDrawerResponse(drawer))
}

func (c *DrawerController) Close(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CloseDrawerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "request body must be valid JSON", nil)
		return
	}

	drawer, err := c.useCase.Close(r.Context(), r.Header.Get("X-Operator"), req.ClosingBalance)
	if err != nil {
		c.handleError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, dto.CloseDrawerResponse{
		ID:              drawer.ID,
		ExpectedBalance: drawer.ExpectedBalance,
		ClosingBalance:  *drawer.ClosingBalance,
		Difference:      *drawer.Difference,
		ClosedAt:        *drawer.ClosedAt,
	})
}

func (c *DrawerController) handleError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if ve, ok := apperrors.IsValidationError(err); ok {
		writeError(w, http.StatusUnprocessableEntity, "VALIDATION", ve.Message, ve.Details)
		return
	}

	if _, ok := apperrors.IsDrawerAlreadyOpenError(err); ok {
		writeError(w, http.StatusConflict, "DRAWER_ALREADY_OPEN", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsNoOpenDrawerError(err); ok {
		writeError(w, http.StatusNotFound, "NO_OPEN_DRAWER", err.Error(), nil)
		return
	}

	if _, ok := apperrors.IsNotFoundError(err); ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred", nil)
}

func toDrawerResponse(d *domain.CashDrawer) dto.DrawerResponse {
	return dto.DrawerResponse{
		ID:              d.ID,
		Owner:           d.Owner,
		Status:          d.Status,
		OpeningBalance:  d.OpeningBalance,
		ExpectedBalance: d.ExpectedBalance,
		ClosingBalance:  d.ClosingBalance,
		Difference:      d.Difference,
		OpenedAt:        d.OpenedAt,
		ClosedAt:        d.ClosedAt,
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
