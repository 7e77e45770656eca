package ledger

import (
	"database/sql"

	"go.uber.org/zap"

	"bree/internal/audit"
	"bree/internal/config"
	"bree/internal/ledger/controller"
	"bree/internal/ledger/repository"
	"bree/internal/ledger/service"
	"bree/internal/ledger/usecase"
)

// NewModule wires the stock-ledger module: repositories, the stock service
// and the manual-movement use case behind its controller.
func NewModule(db *sql.DB, cfg *config.Config, auditor audit.Recorder, logger *zap.Logger) (*controller.MovementController, *service.StockService) {
	productRepo := repository.NewMySQLProductRepository(db)
	entryRepo := repository.NewMySQLLedgerEntryRepository(db)

	stockSvc := service.NewStockService(
		db,
		productRepo,
		entryRepo,
		logger,
		cfg.Checkout.TxTimeout,
	)

	movementUC := usecase.NewRecordMovementUseCase(
		stockSvc,
		auditor,
		logger,
		cfg.Checkout.MaxRetryAttempts,
	)

	return controller.NewMovementController(movementUC, logger), stockSvc
}
