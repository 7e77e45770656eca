package usecase

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"bree/internal/audit"
	"bree/internal/domain"
	apperrors "bree/internal/errors"
	"bree/internal/infrastructure/mysql"
)

type CancellationService interface {
	Cancel(ctx context.Context, actor string, saleID uint, reason string) (*domain.Sale, error)
}

type CancelSaleUseCase struct {
	cancellationSvc  CancellationService
	auditor          audit.Recorder
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewCancelSaleUseCase(
	cancellationSvc CancellationService,
	auditor audit.Recorder,
	logger *zap.Logger,
	maxRetryAttempts int,
) *CancelSaleUseCase {
	return &CancelSaleUseCase{
		cancellationSvc:  cancellationSvc,
		auditor:          auditor,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *CancelSaleUseCase) CancelSale(ctx context.Context, actor string, saleID uint, reason string) (*domain.Sale, error) {
	if err := uc.validate(actor, saleID, reason); err != nil {
		return nil, err
	}

	uc.logger.Info("cancellation started",
		zap.String("actor", actor),
		zap.Uint("saleId", saleID))

	sale, err := uc.cancelWithRetry(ctx, actor, saleID, reason)

	details := map[string]interface{}{
		"saleId": saleID,
		"reason": reason,
	}
	if err != nil {
		details["error"] = err.Error()
		uc.auditor.Record(audit.Event{
			Actor:       actor,
			Action:      "sale.cancellation.failed",
			Description: "sale cancellation rejected",
			Details:     details,
		})
		return nil, err
	}

	details["number"] = sale.Number
	details["total"] = sale.Total.StringFixed(2)
	uc.auditor.Record(audit.Event{
		Actor:       actor,
		Action:      "sale.cancelled",
		Description: "sale cancelled and stock restored",
		Details:     details,
	})

	return sale, nil
}

func (uc *CancelSaleUseCase) validate(actor string, saleID uint, reason string) error {
	var details []apperrors.ValidationDetail

	if actor == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "actor",
			Message: "operator is required",
		})
	}

	if saleID == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "saleId",
			Message: "saleId must be a positive integer",
		})
	}

	if reason == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (uc *CancelSaleUseCase) cancelWithRetry(ctx context.Context, actor string, saleID uint, reason string) (*domain.Sale, error) {
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		sale, err := uc.cancellationSvc.Cancel(ctx, actor, saleID, reason)
		if err == nil {
			return sale, nil
		}

		if !mysql.IsDeadlock(err) {
			return nil, err
		}

		if attempt < uc.maxRetryAttempts {
			base := backoffs[(attempt-1)%len(backoffs)]
			jitter := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
			time.Sleep(jitter)
			uc.logger.Warn("deadlock detected, retrying cancellation",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", uc.maxRetryAttempts),
				zap.Uint("saleId", saleID))
		}
	}

	return nil, apperrors.NewConflictError("max retries exceeded cancelling sale")
}
