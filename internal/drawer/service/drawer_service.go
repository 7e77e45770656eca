package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bree/internal/domain"
	apperrors "bree/internal/errors"
	"bree/internal/infrastructure/mysql"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type DrawerRepository interface {
	Insert(ctx context.Context, drawer *domain.CashDrawer) error
	FindOpenByOwner(ctx context.Context, owner string) (*domain.CashDrawer, error)
	FindOpenByOwnerForUpdate(ctx context.Context, tx *sql.Tx, owner string) (*domain.CashDrawer, error)
	IncrementExpectedTx(ctx context.Context, tx *sql.Tx, drawerID string, amount decimal.Decimal) error
	CloseTx(ctx context.Context, tx *sql.Tx, drawerID string, closing, difference decimal.Decimal, closedAt time.Time) error
}

// DrawerService tracks the open/close lifecycle of one cash drawer per
// operator and the running expected balance of committed cash sales.
type DrawerService struct {
	db         TransactionManager
	drawerRepo DrawerRepository
	logger     *zap.Logger
	txTimeout  time.Duration
}

func NewDrawerService(
	db TransactionManager,
	drawerRepo DrawerRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *DrawerService {
	return &DrawerService{
		db:         db,
		drawerRepo: drawerRepo,
		logger:     logger,
		txTimeout:  txTimeout,
	}
}

// Open starts a drawer session. The unique index on the open-owner column
// backstops the pre-check, so two concurrent opens cannot both succeed.
func (s *DrawerService) Open(ctx context.Context, owner string, openingBalance decimal.Decimal) (*domain.CashDrawer, error) {
	if openingBalance.IsNegative() {
		return nil, apperrors.NewValidationError("openingBalance must not be negative")
	}

	if existing, err := s.drawerRepo.FindOpenByOwner(ctx, owner); err == nil {
		return nil, apperrors.NewDrawerAlreadyOpenError(owner, existing.ID)
	} else if _, ok := apperrors.IsNotFoundError(err); !ok {
		return nil, err
	}

	drawer := &domain.CashDrawer{
		ID:              uuid.New().String(),
		Owner:           owner,
		Status:          domain.DrawerStatusOpen,
		OpeningBalance:  openingBalance.Round(2),
		ExpectedBalance: openingBalance.Round(2),
		OpenedAt:        time.Now(),
	}

	if err := s.drawerRepo.Insert(ctx, drawer); err != nil {
		if mysql.IsDuplicateEntry(err) {
			return nil, apperrors.NewDrawerAlreadyOpenError(owner, "")
		}
		return nil, err
	}

	s.logger.Info("cash drawer opened",
		zap.String("drawerId", drawer.ID),
		zap.String("owner", owner),
		zap.String("openingBalance", drawer.OpeningBalance.StringFixed(2)))

	return drawer, nil
}

// Current returns the operator's open drawer.
func (s *DrawerService) Current(ctx context.Context, owner string) (*domain.CashDrawer, error) {
	drawer, err := s.drawerRepo.FindOpenByOwner(ctx, owner)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewNoOpenDrawerError(owner)
		}
		return nil, err
	}
	return drawer, nil
}

// RecordCashSaleTx increments the expected balance inside the checkout
// transaction. The drawer row is locked first so concurrent cash sales
// serialize and no increment is lost.
func (s *DrawerService) RecordCashSaleTx(ctx context.Context, tx *sql.Tx, owner string, amount decimal.Decimal) (*domain.CashDrawer, error) {
	drawer, err := s.drawerRepo.FindOpenByOwnerForUpdate(ctx, tx, owner)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewDrawerNotOpenError(owner)
		}
		return nil, err
	}

	if err := s.drawerRepo.IncrementExpectedTx(ctx, tx, drawer.ID, amount); err != nil {
		return nil, err
	}

	drawer.ExpectedBalance = drawer.ExpectedBalance.Add(amount)
	return drawer, nil
}

// Close ends the session: expectedBalance is frozen and the difference
// (closing - expected) is computed and reported, never corrected.
func (s *DrawerService) Close(ctx context.Context, owner string, closingBalance decimal.Decimal) (*domain.CashDrawer, error) {
	if closingBalance.IsNegative() {
		return nil, apperrors.NewValidationError("closingBalance must not be negative")
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	drawer, err := s.drawerRepo.FindOpenByOwnerForUpdate(txCtx, tx, owner)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, apperrors.NewNoOpenDrawerError(owner)
		}
		return nil, err
	}

	closing := closingBalance.Round(2)
	difference := drawer.ReconciliationDifference(closing)
	closedAt := time.Now()

	if err := s.drawerRepo.CloseTx(txCtx, tx, drawer.ID, closing, difference, closedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit drawer close", zap.String("drawerId", drawer.ID), zap.Error(err))
		return nil, err
	}

	drawer.Status = domain.DrawerStatusClosed
	drawer.ClosingBalance = &closing
	drawer.Difference = &difference
	drawer.ClosedAt = &closedAt

	s.logger.Info("cash drawer closed",
		zap.String("drawerId", drawer.ID),
		zap.String("owner", owner),
		zap.String("expectedBalance", drawer.ExpectedBalance.StringFixed(2)),
		zap.String("difference", difference.StringFixed(2)))

	return drawer, nil
}
