package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bree/internal/domain"
	"bree/internal/dto"
	apperrors "bree/internal/errors"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ProductRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Product, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
	UpdateStock(ctx context.Context, tx *sql.Tx, id int, newQty int) error
}

type LedgerEntryRepository interface {
	Insert(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) (uint, error)
	ListByProduct(ctx context.Context, productID int, limit int) ([]domain.LedgerEntry, error)
}

// Movement describes one stock change to append to the ledger.
type Movement struct {
	ProductID int
	Type      domain.MovementType
	Quantity  int
	// UnitCost overrides the catalog cost captured on the entry. When nil
	// the product's current cost is used.
	UnitCost      *decimal.Decimal
	ReferenceID   *uint
	ReferenceType *string
	FromLocation  *string
	ToLocation    *string
	Note          string
	Actor         string
}

// StockService owns the append-only movement log and the stock projection on
// the product row. Both writes happen in the same transaction; no reader may
// observe one without the other.
type StockService struct {
	db          TransactionManager
	productRepo ProductRepository
	entryRepo   LedgerEntryRepository
	logger      *zap.Logger
	txTimeout   time.Duration
}

func NewStockService(
	db TransactionManager,
	productRepo ProductRepository,
	entryRepo LedgerEntryRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *StockService {
	return &StockService{
		db:          db,
		productRepo: productRepo,
		entryRepo:   entryRepo,
		logger:      logger,
		txTimeout:   txTimeout,
	}
}

// CheckAvailability answers whether the requested quantity can currently be
// sold. It takes no locks and has no side effects; a checkout must
// re-validate under lock before decrementing.
func (s *StockService) CheckAvailability(ctx context.Context, productID int, requested int) (*dto.Availability, error) {
	if requested <= 0 {
		return nil, apperrors.NewValidationError("requested quantity must be greater than zero")
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	availability := &dto.Availability{
		ProductID:       productID,
		Requested:       requested,
		CurrentQuantity: product.Stock,
		Available:       product.Stock >= requested,
	}
	if !availability.Available {
		availability.Shortfall = requested - product.Stock
	}

	return availability, nil
}

// AppendTx appends one ledger entry and updates the stock projection inside
// the caller's transaction. The product row is locked for the rest of the
// transaction, so previous/new quantities captured here stay consistent with
// what is committed.
func (s *StockService) AppendTx(ctx context.Context, tx *sql.Tx, m Movement) (*domain.LedgerEntry, error) {
	if !domain.ValidMovementType(m.Type) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown movement type %q", m.Type))
	}
	if !domain.QuantitySignValid(m.Type, m.Quantity) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("quantity %d is not valid for movement type %q", m.Quantity, m.Type))
	}
	if m.Type == domain.MovementTransfer && (m.FromLocation == nil || m.ToLocation == nil) {
		return nil, apperrors.NewValidationError("transfer movements require fromLocation and toLocation")
	}

	product, err := s.productRepo.FindByIDForUpdate(ctx, tx, m.ProductID)
	if err != nil {
		return nil, err
	}

	delta := domain.StockDelta(m.Type, m.Quantity)
	newQty := product.Stock + delta
	if newQty < 0 {
		return nil, apperrors.NewInsufficientStockError(m.ProductID, -delta, product.Stock)
	}

	unitCost := product.UnitCost
	if m.UnitCost != nil {
		unitCost = *m.UnitCost
	}

	entry := &domain.LedgerEntry{
		ProductID:        m.ProductID,
		Type:             m.Type,
		Quantity:         m.Quantity,
		PreviousQuantity: product.Stock,
		NewQuantity:      newQty,
		UnitCost:         unitCost,
		TotalValue:       domain.MovementValue(m.Quantity, unitCost),
		ReferenceID:      m.ReferenceID,
		ReferenceType:    m.ReferenceType,
		FromLocation:     m.FromLocation,
		ToLocation:       m.ToLocation,
		Note:             m.Note,
		CreatedBy:        m.Actor,
		CreatedAt:        time.Now(),
	}

	id, err := s.entryRepo.Insert(ctx, tx, entry)
	if err != nil {
		return nil, err
	}
	entry.ID = id

	if delta != 0 {
		if err := s.productRepo.UpdateStock(ctx, tx, m.ProductID, newQty); err != nil {
			return nil, err
		}
	}

	if newQty <= product.ReorderThreshold {
		s.logger.Warn("product at or below reorder threshold",
			zap.Int("productId", m.ProductID),
			zap.String("sku", product.SKU),
			zap.Int("stock", newQty),
			zap.Int("reorderThreshold", product.ReorderThreshold))
	}

	return entry, nil
}

// Record appends a movement in its own transaction. Used for manual stock
// operations; checkouts and cancellations use AppendTx inside their own
// transactional unit.
func (s *StockService) Record(ctx context.Context, m Movement) (*domain.LedgerEntry, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// Rollback is a no-op once the transaction has been committed.
	defer tx.Rollback()

	entry, err := s.AppendTx(txCtx, tx, m)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit movement", zap.Int("productId", m.ProductID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("movement recorded",
		zap.Int("productId", m.ProductID),
		zap.String("type", string(m.Type)),
		zap.Int("quantity", m.Quantity),
		zap.Int("newQuantity", entry.NewQuantity))

	return entry, nil
}

// History lists the most recent movements for a product, newest first.
func (s *StockService) History(ctx context.Context, productID int, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	return s.entryRepo.ListByProduct(ctx, productID, limit)
}
