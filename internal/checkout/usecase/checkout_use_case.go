package usecase

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bree/internal/audit"
	"bree/internal/domain"
	"bree/internal/dto"
	apperrors "bree/internal/errors"
	"bree/internal/infrastructure/mysql"
)

type CheckoutService interface {
	Checkout(ctx context.Context, actor string, items []dto.CheckoutItem, customerID *uint,
		paymentMethod string, discount decimal.Decimal) (*domain.Sale, error)
}

type StockChecker interface {
	CheckAvailability(ctx context.Context, productID int, requested int) (*dto.Availability, error)
}

// CheckoutUseCase drives one sale through validating, pricing and committing.
// Validation and the lock-free availability pre-check happen before any
// write; the commit itself re-validates under row locks inside the service,
// so a shortfall detected there is the concurrent-sale case, not a bug.
type CheckoutUseCase struct {
	checkoutSvc      CheckoutService
	stockChecker     StockChecker
	auditor          audit.Recorder
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewCheckoutUseCase(
	checkoutSvc CheckoutService,
	stockChecker StockChecker,
	auditor audit.Recorder,
	logger *zap.Logger,
	maxRetryAttempts int,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		checkoutSvc:      checkoutSvc,
		stockChecker:     stockChecker,
		auditor:          auditor,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *CheckoutUseCase) Checkout(ctx context.Context, actor string, req dto.CheckoutRequest) (*domain.Sale, error) {
	uc.logger.Info("checkout started",
		zap.String("actor", actor),
		zap.Int("itemCount", len(req.Items)),
		zap.String("paymentMethod", req.PaymentMethod))

	sale, err := uc.checkout(ctx, actor, req)

	details := map[string]interface{}{
		"itemCount":     len(req.Items),
		"paymentMethod": req.PaymentMethod,
	}
	if err != nil {
		details["error"] = err.Error()
		uc.auditor.Record(audit.Event{
			Actor:       actor,
			Action:      "sale.checkout.failed",
			Description: "checkout rejected",
			Details:     details,
		})
		return nil, err
	}

	details["saleId"] = sale.ID
	details["number"] = sale.Number
	details["total"] = sale.Total.StringFixed(2)
	uc.auditor.Record(audit.Event{
		Actor:       actor,
		Action:      "sale.completed",
		Description: "checkout committed",
		Details:     details,
	})

	return sale, nil
}

func (uc *CheckoutUseCase) checkout(ctx context.Context, actor string, req dto.CheckoutRequest) (*domain.Sale, error) {
	if err := uc.validate(actor, req); err != nil {
		return nil, err
	}

	// Lock products in ascending id order inside the transaction to avoid
	// deadlocks between concurrent checkouts.
	items := make([]dto.CheckoutItem, len(req.Items))
	copy(items, req.Items)
	sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

	// Validating: lock-free pre-check. No writes have happened yet, so a
	// shortfall here aborts cheaply with the offending product named.
	for _, item := range items {
		availability, err := uc.stockChecker.CheckAvailability(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if !availability.Available {
			return nil, apperrors.NewInsufficientStockError(
				item.ProductID, item.Quantity, availability.CurrentQuantity)
		}
	}

	discount := decimal.Zero
	if req.Discount != nil {
		discount = *req.Discount
	}

	return uc.checkoutWithRetry(ctx, actor, items, req.CustomerID, req.PaymentMethod, discount)
}

func (uc *CheckoutUseCase) validate(actor string, req dto.CheckoutRequest) error {
	var details []apperrors.ValidationDetail

	if actor == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "actor",
			Message: "operator is required",
		})
	}

	if len(req.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items must not be empty",
		})
	}

	if len(req.Items) > 100 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "items",
			Message: "items exceeds maximum of 100",
		})
	}

	productIDSeen := make(map[int]bool)
	for idx, item := range req.Items {
		if item.ProductID <= 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].productId",
				Message: "each productId must be a positive integer",
			})
		}

		if productIDSeen[item.ProductID] {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].productId",
				Message: "productId must not be duplicated",
			})
		}
		productIDSeen[item.ProductID] = true

		if item.Quantity < 1 || item.Quantity > 10000 {
			details = append(details, apperrors.ValidationDetail{
				Field:   "items[" + strconv.Itoa(idx) + "].quantity",
				Message: "quantity must be between 1 and 10000",
			})
		}
	}

	if !domain.ValidPaymentMethod(req.PaymentMethod) {
		details = append(details, apperrors.ValidationDetail{
			Field:   "paymentMethod",
			Message: "paymentMethod must be one of cash, card, transfer, pix, multiple",
		})
	}

	if req.Discount != nil && req.Discount.IsNegative() {
		details = append(details, apperrors.ValidationDetail{
			Field:   "discount",
			Message: "discount must not be negative",
		})
	}

	if req.CustomerID != nil && *req.CustomerID == 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "customerId",
			Message: "customerId must be a positive integer",
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}

	return nil
}

func (uc *CheckoutUseCase) checkoutWithRetry(
	ctx context.Context,
	actor string,
	items []dto.CheckoutItem,
	customerID *uint,
	paymentMethod string,
	discount decimal.Decimal,
) (*domain.Sale, error) {
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		sale, err := uc.checkoutSvc.Checkout(ctx, actor, items, customerID, paymentMethod, discount)
		if err == nil {
			return sale, nil
		}

		// Deadlocks and sale-number collisions are the only retryable
		// failures; everything else surfaces verbatim.
		if !mysql.IsDeadlock(err) && !mysql.IsDuplicateEntry(err) {
			return nil, err
		}

		if attempt < uc.maxRetryAttempts {
			base := backoffs[(attempt-1)%len(backoffs)]
			jitter := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))
			time.Sleep(jitter)
			uc.logger.Warn("retryable conflict during checkout",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", uc.maxRetryAttempts),
				zap.Error(err))
		}
	}

	return nil, apperrors.NewConflictError("max retries exceeded committing checkout")
}
