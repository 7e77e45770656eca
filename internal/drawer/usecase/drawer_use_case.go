package usecase

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bree/internal/audit"
	"bree/internal/domain"
	apperrors "bree/internal/errors"
)

type DrawerService interface {
	Open(ctx context.Context, owner string, openingBalance decimal.Decimal) (*domain.CashDrawer, error)
	Current(ctx context.Context, owner string) (*domain.CashDrawer, error)
	Close(ctx context.Context, owner string, closingBalance decimal.Decimal) (*domain.CashDrawer, error)
}

type DrawerUseCase struct {
	drawerSvc DrawerService
	auditor   audit.Recorder
	logger    *zap.Logger
}

func NewDrawerUseCase(drawerSvc DrawerService, auditor audit.Recorder, logger *zap.Logger) *DrawerUseCase {
	return &DrawerUseCase{
		drawerSvc: drawerSvc,
		auditor:   auditor,
		logger:    logger,
	}
}

func (uc *DrawerUseCase) Open(ctx context.Context, actor string, openingBalance decimal.Decimal) (*domain.CashDrawer, error) {
	if actor == "" {
		return nil, apperrors.NewValidationError("operator is required")
	}

	drawer, err := uc.drawerSvc.Open(ctx, actor, openingBalance)
	if err != nil {
		uc.auditor.Record(audit.Event{
			Actor:       actor,
			Action:      "drawer.open.failed",
			Description: "cash drawer open rejected",
			Details:     map[string]interface{}{"error": err.Error()},
		})
		return nil, err
	}

	uc.auditor.Record(audit.Event{
		Actor:       actor,
		Action:      "drawer.opened",
		Description: "cash drawer opened",
		Details: map[string]interface{}{
			"drawerId":       drawer.ID,
			"openingBalance": drawer.OpeningBalance.StringFixed(2),
		},
	})

	return drawer, nil
}

func (uc *DrawerUseCase) Current(ctx context.Context, actor string) (*domain.CashDrawer, error) {
	if actor == "" {
		return nil, apperrors.NewValidationError("operator is required")
	}
	return uc.drawerSvc.Current(ctx, actor)
}

func (uc *DrawerUseCase) Close(ctx context.Context, actor string, closingBalance decimal.Decimal) (*domain.CashDrawer, error) {
	if actor == "" {
		return nil, apperrors.NewValidationError("operator is required")
	}

	drawer, err := uc.drawerSvc.Close(ctx, actor, closingBalance)
	if err != nil {
		uc.auditor.Record(audit.Event{
			Actor:       actor,
			Action:      "drawer.close.failed",
			Description: "cash drawer close rejected",
			Details:     map[string]interface{}{"error": err.Error()},
		})
		return nil, err
	}

	uc.auditor.Record(audit.Event{
		Actor:       actor,
		Action:      "drawer.closed",
		Description: "cash drawer closed",
		Details: map[string]interface{}{
			"drawerId":        drawer.ID,
			"expectedBalance": drawer.ExpectedBalance.StringFixed(2),
			"difference":      drawer.Difference.StringFixed(2),
		},
	})

	return drawer, nil
}
