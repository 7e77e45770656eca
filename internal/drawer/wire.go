package drawer

import (
	"database/sql"

	"go.uber.org/zap"

	"bree/internal/audit"
	"bree/internal/config"
	"bree/internal/drawer/controller"
	"bree/internal/drawer/repository"
	"bree/internal/drawer/service"
	"bree/internal/drawer/usecase"
)

// NewModule wires the cash-drawer module. The returned service is shared
// with the checkout orchestrator for in-transaction cash-sale increments.
func NewModule(db *sql.DB, cfg *config.Config, auditor audit.Recorder, logger *zap.Logger) (*controller.DrawerController, *service.DrawerService) {
	drawerRepo := repository.NewMySQLDrawerRepository(db)

	drawerSvc := service.NewDrawerService(
		db,
		drawerRepo,
		logger,
		cfg.Checkout.TxTimeout,
	)

	drawerUC := usecase.NewDrawerUseCase(drawerSvc, auditor, logger)

	return controller.NewDrawerController(drawerUC, logger), drawerSvc
}
