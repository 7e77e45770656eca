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
	ledgersvc "bree/internal/ledger/service"
	"bree/internal/pricing"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type ProductRepository interface {
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
}

type SaleRepository interface {
	NextSequenceForDay(ctx context.Context, tx *sql.Tx, day time.Time) (int, error)
	Insert(ctx context.Context, tx *sql.Tx, sale *domain.Sale, day time.Time, seq int) (uint, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Sale, error)
	UpdateStatusAndNotesTx(ctx context.Context, tx *sql.Tx, id uint, status, notes string) error
}

// StockLedger is the tx-scoped append surface of the stock ledger.
type StockLedger interface {
	AppendTx(ctx context.Context, tx *sql.Tx, m ledgersvc.Movement) (*domain.LedgerEntry, error)
}

type CashDrawerService interface {
	RecordCashSaleTx(ctx context.Context, tx *sql.Tx, owner string, amount decimal.Decimal) (*domain.CashDrawer, error)
}

type CustomerRepository interface {
	RegisterPurchaseTx(ctx context.Context, tx *sql.Tx, id uint, amount decimal.Decimal, when time.Time) error
	ReversePurchaseTx(ctx context.Context, tx *sql.Tx, id uint, amount decimal.Decimal) error
}

// CheckoutService commits one sale as a single transactional unit: sale row,
// ledger entries, drawer increment and customer aggregate either all become
// visible together or none do.
type CheckoutService struct {
	db           TransactionManager
	productRepo  ProductRepository
	saleRepo     SaleRepository
	stock        StockLedger
	drawerSvc    CashDrawerService
	customerRepo CustomerRepository
	logger       *zap.Logger
	txTimeout    time.Duration
}

func NewCheckoutService(
	db TransactionManager,
	productRepo ProductRepository,
	saleRepo SaleRepository,
	stock StockLedger,
	drawerSvc CashDrawerService,
	customerRepo CustomerRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *CheckoutService {
	return &CheckoutService{
		db:           db,
		productRepo:  productRepo,
		saleRepo:     saleRepo,
		stock:        stock,
		drawerSvc:    drawerSvc,
		customerRepo: customerRepo,
		logger:       logger,
		txTimeout:    txTimeout,
	}
}

// Checkout runs validation, pricing and commit for one cart. Items must
// already be sorted by ascending product id; product rows are locked in that
// order and held until commit, so the availability check and the stock
// decrement cannot be separated by a concurrent checkout.
func (s *CheckoutService) Checkout(
	ctx context.Context,
	actor string,
	items []dto.CheckoutItem,
	customerID *uint,
	paymentMethod string,
	discount decimal.Decimal,
) (*domain.Sale, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// Rollback is a no-op once the transaction has been committed.
	defer tx.Rollback()

	now := time.Now()

	// Validate under lock and freeze the catalog snapshot.
	saleItems := make([]domain.SaleItem, 0, len(items))
	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		product, err := s.productRepo.FindByIDForUpdate(txCtx, tx, item.ProductID)
		if err != nil {
			return nil, err
		}

		if !product.Sellable() {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("product %d (%s) is %s and cannot be sold", product.ID, product.SKU, product.Status))
		}

		if product.Stock < item.Quantity {
			return nil, apperrors.NewInsufficientStockError(product.ID, item.Quantity, product.Stock)
		}

		saleItems = append(saleItems, domain.SaleItem{
			ProductID: product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: product.UnitPrice,
			TaxRate:   product.TaxRate,
		})
		lines = append(lines, pricing.Line{
			UnitPrice: product.UnitPrice,
			Quantity:  item.Quantity,
			TaxRate:   product.TaxRate,
		})
	}

	totals, err := pricing.Calculate(lines, discount)
	if err != nil {
		return nil, err
	}
	for i := range saleItems {
		saleItems[i].Subtotal = totals.Lines[i].Subtotal
		saleItems[i].Tax = totals.Lines[i].Tax
	}

	seq, err := s.saleRepo.NextSequenceForDay(txCtx, tx, now)
	if err != nil {
		return nil, err
	}

	sale := &domain.Sale{
		Number:        domain.FormatSaleNumber(now, seq),
		Items:         saleItems,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Discount:      totals.Discount,
		Total:         totals.Total,
		PaymentMethod: paymentMethod,
		Status:        domain.SaleStatusCompleted,
		CustomerID:    customerID,
		Operator:      actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if !sale.TotalsConsistent() {
		return nil, apperrors.NewInternalError(
			fmt.Sprintf("sale %s totals are inconsistent", sale.Number), nil)
	}

	saleID, err := s.saleRepo.Insert(txCtx, tx, sale, now, seq)
	if err != nil {
		return nil, err
	}
	sale.ID = saleID

	refType := domain.ReferenceTypeSale
	for _, item := range saleItems {
		_, err := s.stock.AppendTx(txCtx, tx, ledgersvc.Movement{
			ProductID:     item.ProductID,
			Type:          domain.MovementSale,
			Quantity:      -item.Quantity,
			ReferenceID:   &sale.ID,
			ReferenceType: &refType,
			Note:          fmt.Sprintf("sale %s", sale.Number),
			Actor:         actor,
		})
		if err != nil {
			return nil, err
		}
	}

	if paymentMethod == domain.PaymentCash {
		if _, err := s.drawerSvc.RecordCashSaleTx(txCtx, tx, actor, sale.Total); err != nil {
			return nil, err
		}
	}

	if customerID != nil {
		if err := s.customerRepo.RegisterPurchaseTx(txCtx, tx, *customerID, sale.Total, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit checkout", zap.String("number", sale.Number), zap.Error(err))
		return nil, err
	}

	s.logger.Info("checkout committed",
		zap.Uint("saleId", sale.ID),
		zap.String("number", sale.Number),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.String("paymentMethod", paymentMethod),
		zap.Int("itemCount", len(saleItems)))

	return sale, nil
}
