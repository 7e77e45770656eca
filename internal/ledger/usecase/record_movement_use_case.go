package usecase

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"bree/internal/audit"
	"bree/internal/domain"
	"bree/internal/dto"
	apperrors "bree/internal/errors"
	"bree/internal/infrastructure/mysql"
	"bree/internal/ledger/service"
)

type StockService interface {
	CheckAvailability(ctx context.Context, productID int, requested int) (*dto.Availability, error)
	Record(ctx context.Context, m service.Movement) (*domain.LedgerEntry, error)
	History(ctx context.Context, productID int, limit int) ([]domain.LedgerEntry, error)
}

// RecordMovementUseCase covers manual stock operations: goods receipt,
// withdrawal, adjustment, loss and transfer. Sale and return movements are
// only ever written by the checkout and cancellation flows.
type RecordMovementUseCase struct {
	stockSvc         StockService
	auditor          audit.Recorder
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewRecordMovementUseCase(
	stockSvc StockService,
	auditor audit.Recorder,
	logger *zap.Logger,
	maxRetryAttempts int,
) *RecordMovementUseCase {
	return &RecordMovementUseCase{
		stockSvc:         stockSvc,
		auditor:          auditor,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *RecordMovementUseCase) RecordMovement(
	ctx context.Context,
	actor string,
	productID int,
	req dto.RecordMovementRequest,
) (*domain.LedgerEntry, error) {
	movementType := domain.MovementType(req.Type)

	if err := uc.validate(actor, productID, movementType, req); err != nil {
		return nil, err
	}

	movement := service.Movement{
		ProductID:    productID,
		Type:         movementType,
		Quantity:     req.Quantity,
		UnitCost:     req.UnitCost,
		FromLocation: req.FromLocation,
		ToLocation:   req.ToLocation,
		Note:         req.Note,
		Actor:        actor,
	}
	if movementType != domain.MovementTransfer {
		refType := domain.ReferenceTypeManual
		movement.ReferenceType = &refType
	}

	entry, err := uc.recordWithRetry(ctx, movement)

	details := map[string]interface{}{
		"productId": productID,
		"type":      req.Type,
		"quantity":  req.Quantity,
	}
	if err != nil {
		details["error"] = err.Error()
		uc.auditor.Record(audit.Event{
			Actor:       actor,
			Action:      "stock.movement.failed",
			Description: "manual stock movement rejected",
			Details:     details,
		})
		return nil, err
	}

	details["entryId"] = entry.ID
	details["newQuantity"] = entry.NewQuantity
	uc.auditor.Record(audit.Event{
		Actor:       actor,
		Action:      "stock.movement.recorded",
		Description: "manual stock movement recorded",
		Details:     details,
	})

	return entry, nil
}

func (uc *RecordMovementUseCase) CheckAvailability(ctx context.Context, productID int, requested int) (*dto.Availability, error) {
	return uc.stockSvc.CheckAvailability(ctx, productID, requested)
}

func (uc *RecordMovementUseCase) History(ctx context.Context, productID int, limit int) ([]domain.LedgerEntry, error) {
	return uc.stockSvc.History(ctx, productID, limit)
}

func (uc *RecordMovementUseCase) validate(actor string, productID int, movementType domain.MovementType, req dto.RecordMovementRequest) error {
	var details []apperrors.ValidationDetail

	if actor == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "actor",
			Message: "operator is required",
		})
	}

	if productID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "productId",
			Message: "productId must be a positive integer",
		})
	}

	switch movementType {
	case domain.MovementEntry, domain.MovementWithdrawal, domain.MovementAdjustment,
		domain.MovementInitial, domain.MovementLoss, domain.MovementTransfer:
	case domain.MovementSale, domain.MovementReturn:
		details = append(details, apperrors.ValidationDetail{
			Field:   "type",
			Message: "sale and return movements are created by checkout and cancellation only",
		})
	default:
		details = append(details, apperrors.ValidationDetail{
			Field:   "type",
			Message: "unknown movement type",
		})
	}

	if req.Quantity == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: "quantity must not be zero",
		})
	}

	if req.UnitCost != nil && req.UnitCost.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "unitCost",
			Message: "unitCost must not be negative",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (uc *RecordMovementUseCase) recordWithRetry(ctx context.Context, movement service.Movement) (*domain.LedgerEntry, error) {
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		entry, err := uc.stockSvc.Record(ctx, movement)
		if err == nil {
			return entry, nil
		}

		if !mysql.IsDeadlock(err) {
			return nil, err
		}

		if attempt < uc.maxRetryAttempts {
			base := backoffs[(attempt-1)%len(backoffs)]
			jitter := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
			time.Sleep(jitter)
			uc.logger.Warn("deadlock detected, retrying movement",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", uc.maxRetryAttempts),
				zap.Int("productId", movement.ProductID))
		}
	}

	return nil, apperrors.NewConflictError("max retries exceeded recording movement")
}
