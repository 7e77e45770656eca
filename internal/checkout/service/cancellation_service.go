package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bree/internal/domain"
	apperrors "bree/internal/errors"
	ledgersvc "bree/internal/ledger/service"
)

type LedgerEntryReader interface {
	ListByReferenceTx(ctx context.Context, tx *sql.Tx, referenceID uint, referenceType string) ([]domain.LedgerEntry, error)
}

// CancellationService reverses a committed sale: compensating return
// entries, status flip and customer aggregate rollback, all in one
// transaction. The original sale entries are never edited.
type CancellationService struct {
	db           TransactionManager
	saleRepo     SaleRepository
	stock        StockLedger
	entryReader  LedgerEntryReader
	customerRepo CustomerRepository
	logger       *zap.Logger
	txTimeout    time.Duration
	windowHours  int
}

func NewCancellationService(
	db TransactionManager,
	saleRepo SaleRepository,
	stock StockLedger,
	entryReader LedgerEntryReader,
	customerRepo CustomerRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
	windowHours int,
) *CancellationService {
	return &CancellationService{
		db:           db,
		saleRepo:     saleRepo,
		stock:        stock,
		entryReader:  entryReader,
		customerRepo: customerRepo,
		logger:       logger,
		txTimeout:    txTimeout,
		windowHours:  windowHours,
	}
}

// Cancel reverses a completed sale no older than the cancellation window.
// Stock is restored at the unit cost captured on the original sale entries,
// not the product's current cost, so the reversal values exactly what the
// sale consumed.
func (s *CancellationService) Cancel(ctx context.Context, actor string, saleID uint, reason string) (*domain.Sale, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	defer tx.Rollback()

	sale, err := s.saleRepo.FindByIDForUpdate(txCtx, tx, saleID)
	if err != nil {
		return nil, err
	}

	if sale.Status != domain.SaleStatusCompleted {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("sale %d is %s, only completed sales can be cancelled", saleID, sale.Status))
	}

	now := time.Now()
	age := sale.Age(now)
	if age > time.Duration(s.windowHours)*time.Hour {
		ageHours := decimal.NewFromFloat(age.Hours())
		return nil, apperrors.NewCancellationWindowExpiredError(saleID, ageHours, s.windowHours)
	}

	originals, err := s.entryReader.ListByReferenceTx(txCtx, tx, saleID, domain.ReferenceTypeSale)
	if err != nil {
		return nil, err
	}
	if len(originals) == 0 {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("sale %d has no ledger entries to reverse", saleID), nil)
	}

	refType := domain.ReferenceTypeSaleCancellation
	for _, original := range originals {
		unitCost := original.UnitCost
		_, err := s.stock.AppendTx(txCtx, tx, ledgersvc.Movement{
			ProductID:     original.ProductID,
			Type:          domain.MovementReturn,
			Quantity:      -original.Quantity,
			UnitCost:      &unitCost,
			ReferenceID:   &saleID,
			ReferenceType: &refType,
			Note:          fmt.Sprintf("cancellation of sale %s", sale.Number),
			Actor:         actor,
		})
		if err != nil {
			return nil, err
		}
	}

	notes := sale.Notes
	if notes != "" {
		notes += "\n"
	}
	notes += fmt.Sprintf("cancelled by %s: %s", actor, reason)

	if err := s.saleRepo.UpdateStatusAndNotesTx(txCtx, tx, saleID, domain.SaleStatusCancelled, notes); err != nil {
		return nil, err
	}

	if sale.CustomerID != nil {
		if err := s.customerRepo.ReversePurchaseTx(txCtx, tx, *sale.CustomerID, sale.Total); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit cancellation", zap.Uint("saleId", saleID), zap.Error(err))
		return nil, err
	}

	sale.Status = domain.SaleStatusCancelled
	sale.Notes = notes
	sale.UpdatedAt = now

	s.logger.Info("sale cancelled",
		zap.Uint("saleId", saleID),
		zap.String("number", sale.Number),
		zap.String("reason", reason),
		zap.Int("reversedEntries", len(originals)))

	return sale, nil
}
