package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	checkoutctrl "bree/internal/checkout/controller"
	drawerctrl "bree/internal/drawer/controller"
	ledgerctrl "bree/internal/ledger/controller"
)

func NewRouter(
	checkoutCtrl *checkoutctrl.CheckoutController,
	drawerCtrl *drawerctrl.DrawerController,
	movementCtrl *ledgerctrl.MovementController,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Post("/checkout", checkoutCtrl.Checkout)
	r.Post("/sales/{saleId}/cancel", checkoutCtrl.CancelSale)

	r.Route("/drawers", func(r chi.Router) {
		r.Post("/open", drawerCtrl.Open)
		r.Post("/close", drawerCtrl.Close)
		r.Get("/current", drawerCtrl.Current)
	})

	r.Route("/products/{productId}", func(r chi.Router) {
		r.Post("/movements", movementCtrl.RecordMovement)
		r.Get("/movements", movementCtrl.History)
		r.Get("/availability", movementCtrl.CheckAvailability)
	})

	return r
}
