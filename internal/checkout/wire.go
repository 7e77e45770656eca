package checkout

import (
	"database/sql"

	"go.uber.org/zap"

	"bree/internal/audit"
	"bree/internal/checkout/controller"
	"bree/internal/checkout/repository"
	"bree/internal/checkout/service"
	"bree/internal/checkout/usecase"
	"bree/internal/config"
	customerrepo "bree/internal/customer/repository"
	drawersvc "bree/internal/drawer/service"
	ledgerrepo "bree/internal/ledger/repository"
	ledgersvc "bree/internal/ledger/service"
)

// NewModule wires the checkout orchestrator and the cancellation flow. The
// stock service and drawer service are shared with their own modules so
// every write goes through the same code paths.
func NewModule(
	db *sql.DB,
	cfg *config.Config,
	stockSvc *ledgersvc.StockService,
	drawerSvc *drawersvc.DrawerService,
	auditor audit.Recorder,
	logger *zap.Logger,
) *controller.CheckoutController {
	saleRepo := repository.NewMySQLSaleRepository(db)
	productRepo := ledgerrepo.NewMySQLProductRepository(db)
	entryRepo := ledgerrepo.NewMySQLLedgerEntryRepository(db)
	customerRepo := customerrepo.NewMySQLCustomerRepository(db)

	checkoutSvc := service.NewCheckoutService(
		db,
		productRepo,
		saleRepo,
		stockSvc,
		drawerSvc,
		customerRepo,
		logger,
		cfg.Checkout.TxTimeout,
	)

	cancellationSvc := service.NewCancellationService(
		db,
		saleRepo,
		stockSvc,
		entryRepo,
		customerRepo,
		logger,
		cfg.Checkout.TxTimeout,
		cfg.Checkout.CancellationWindowHours,
	)

	checkoutUC := usecase.NewCheckoutUseCase(
		checkoutSvc,
		stockSvc,
		auditor,
		logger,
		cfg.Checkout.MaxRetryAttempts,
	)

	cancelUC := usecase.NewCancelSaleUseCase(
		cancellationSvc,
		auditor,
		logger,
		cfg.Checkout.MaxRetryAttempts,
	)

	return controller.NewCheckoutController(checkoutUC, cancelUC, logger)
}
