package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bree/internal/domain"
	apperrors "bree/internal/errors"
)

type mockProductRepository struct {
	FindByIDFunc          func(ctx context.Context, id int) (*domain.Product, error)
	FindByIDForUpdateFunc func(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error)
	UpdateStockFunc       func(ctx context.Context, tx *sql.Tx, id int, newQty int) error
}

func (m *mockProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockProductRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
	return m.FindByIDForUpdateFunc(ctx, tx, id)
}

func (m *mockProductRepository) UpdateStock(ctx context.Context, tx *sql.Tx, id int, newQty int) error {
	return m.UpdateStockFunc(ctx, tx, id, newQty)
}

type mockLedgerEntryRepository struct {
	InsertFunc        func(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) (uint, error)
	ListByProductFunc func(ctx context.Context, productID int, limit int) ([]domain.LedgerEntry, error)
}

func (m *mockLedgerEntryRepository) Insert(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) (uint, error) {
	return m.InsertFunc(ctx, tx, entry)
}

func (m *mockLedgerEntryRepository) ListByProduct(ctx context.Context, productID int, limit int) ([]domain.LedgerEntry, error) {
	return m.ListByProductFunc(ctx, productID, limit)
}

func newTestStockService(productRepo ProductRepository, entryRepo LedgerEntryRepository) *StockService {
	return NewStockService(nil, productRepo, entryRepo, zap.NewNop(), 5*time.Second)
}

func testProduct(stock int) *domain.Product {
	return &domain.Product{
		ID:               3,
		SKU:              "PIPE-001",
		Name:             "Longbottom Leaf",
		UnitPrice:        decimal.RequireFromString("10.00"),
		UnitCost:         decimal.RequireFromString("6.00"),
		TaxRate:          decimal.RequireFromString("10"),
		Stock:            stock,
		ReorderThreshold: 2,
		Status:           domain.ProductStatusActive,
	}
}

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()

	productRepo := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int) (*domain.Product, error) {
			return testProduct(5), nil
		},
	}

	svc := newTestStockService(productRepo, &mockLedgerEntryRepository{})

	availability, err := svc.CheckAvailability(ctx, 3, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !availability.Available {
		t.Errorf("expected 4 of 5 to be available")
	}
	if availability.CurrentQuantity != 5 {
		t.Errorf("expected current quantity 5, got %d", availability.CurrentQuantity)
	}

	availability, err = svc.CheckAvailability(ctx, 3, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if availability.Available {
		t.Errorf("expected 8 of 5 to be unavailable")
	}
	if availability.Shortfall != 3 {
		t.Errorf("expected shortfall 3, got %d", availability.Shortfall)
	}
}

func TestCheckAvailability_InvalidRequest(t *testing.T) {
	ctx := context.Background()

	svc := newTestStockService(&mockProductRepository{}, &mockLedgerEntryRepository{})

	_, err := svc.CheckAvailability(ctx, 3, 0)
	if _, ok := apperrors.IsValidationError(err); !ok {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestCheckAvailability_ProductNotFound(t *testing.T) {
	ctx := context.Background()

	productRepo := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int) (*domain.Product, error) {
			return nil, apperrors.NewNotFoundError("product with id 99 not found")
		},
	}

	svc := newTestStockService(productRepo, &mockLedgerEntryRepository{})

	_, err := svc.CheckAvailability(ctx, 99, 1)
	if _, ok := apperrors.IsNotFoundError(err); !ok {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestAppendTx_RejectsInvalidMovements(t *testing.T) {
	ctx := context.Background()

	// Validation happens before the product row is touched, so no repository
	// calls are expected and the nil transaction is never dereferenced.
	svc := newTestStockService(&mockProductRepository{}, &mockLedgerEntryRepository{})

	cases := []struct {
		name     string
		movement Movement
	}{
		{"unknown type", Movement{ProductID: 3, Type: domain.MovementType("restock"), Quantity: 5}},
		{"entry with negative quantity", Movement{ProductID: 3, Type: domain.MovementEntry, Quantity: -5}},
		{"sale with positive quantity", Movement{ProductID: 3, Type: domain.MovementSale, Quantity: 5}},
		{"adjustment with zero quantity", Movement{ProductID: 3, Type: domain.MovementAdjustment, Quantity: 0}},
		{"transfer without locations", Movement{ProductID: 3, Type: domain.MovementTransfer, Quantity: 4}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AppendTx(ctx, nil, tc.movement)
			if _, ok := apperrors.IsValidationError(err); !ok {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAppendTx_InsufficientStock(t *testing.T) {
	ctx := context.Background()

	productRepo := &mockProductRepository{
		FindByIDForUpdateFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
			return testProduct(2), nil
		},
	}

	svc := newTestStockService(productRepo, &mockLedgerEntryRepository{})

	_, err := svc.AppendTx(ctx, nil, Movement{
		ProductID: 3,
		Type:      domain.MovementSale,
		Quantity:  -5,
		Actor:     "operator-1",
	})

	ise, ok := apperrors.IsInsufficientStockError(err)
	if !ok {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if ise.Requested != 5 || ise.Available != 2 || ise.Shortfall() != 3 {
		t.Errorf("unexpected error context: %+v", ise)
	}
}

func TestAppendTx_CapturesCatalogCost(t *testing.T) {
	ctx := context.Background()

	var inserted *domain.LedgerEntry
	productRepo := &mockProductRepository{
		FindByIDForUpdateFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
			return testProduct(10), nil
		},
		UpdateStockFunc: func(ctx context.Context, tx *sql.Tx, id int, newQty int) error {
			if newQty != 7 {
				t.Errorf("expected projection update to 7, got %d", newQty)
			}
			return nil
		},
	}
	entryRepo := &mockLedgerEntryRepository{
		InsertFunc: func(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) (uint, error) {
			inserted = entry
			return 41, nil
		},
	}

	svc := newTestStockService(productRepo, entryRepo)

	entry, err := svc.AppendTx(ctx, nil, Movement{
		ProductID: 3,
		Type:      domain.MovementSale,
		Quantity:  -3,
		Actor:     "operator-1",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.ID != 41 {
		t.Errorf("expected inserted id 41, got %d", entry.ID)
	}
	if inserted.PreviousQuantity != 10 || inserted.NewQuantity != 7 {
		t.Errorf("unexpected quantities: prev=%d new=%d", inserted.PreviousQuantity, inserted.NewQuantity)
	}
	if !inserted.UnitCost.Equal(decimal.RequireFromString("6.00")) {
		t.Errorf("expected catalog cost 6.00, got %s", inserted.UnitCost)
	}
	if !inserted.TotalValue.Equal(decimal.RequireFromString("18.00")) {
		t.Errorf("expected total value 18.00, got %s", inserted.TotalValue)
	}
}

func TestAppendTx_CostOverride(t *testing.T) {
	ctx := context.Background()

	var inserted *domain.LedgerEntry
	productRepo := &mockProductRepository{
		FindByIDForUpdateFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
			return testProduct(10), nil
		},
		UpdateStockFunc: func(ctx context.Context, tx *sql.Tx, id int, newQty int) error {
			return nil
		},
	}
	entryRepo := &mockLedgerEntryRepository{
		InsertFunc: func(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) (uint, error) {
			inserted = entry
			return 42, nil
		},
	}

	svc := newTestStockService(productRepo, entryRepo)

	override := decimal.RequireFromString("5.50")
	_, err := svc.AppendTx(ctx, nil, Movement{
		ProductID: 3,
		Type:      domain.MovementEntry,
		Quantity:  4,
		UnitCost:  &override,
		Actor:     "operator-1",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !inserted.UnitCost.Equal(override) {
		t.Errorf("expected override cost 5.50, got %s", inserted.UnitCost)
	}
	if !inserted.TotalValue.Equal(decimal.RequireFromString("22.00")) {
		t.Errorf("expected total value 22.00, got %s", inserted.TotalValue)
	}
}

func TestAppendTx_TransferLeavesStockUnchanged(t *testing.T) {
	ctx := context.Background()

	productRepo := &mockProductRepository{
		FindByIDForUpdateFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
			return testProduct(10), nil
		},
		UpdateStockFunc: func(ctx context.Context, tx *sql.Tx, id int, newQty int) error {
			t.Fatalf("transfer must not update the stock projection")
			return nil
		},
	}
	entryRepo := &mockLedgerEntryRepository{
		InsertFunc: func(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) (uint, error) {
			return 43, nil
		},
	}

	svc := newTestStockService(productRepo, entryRepo)

	from, to := "warehouse", "floor"
	entry, err := svc.AppendTx(ctx, nil, Movement{
		ProductID:    3,
		Type:         domain.MovementTransfer,
		Quantity:     4,
		FromLocation: &from,
		ToLocation:   &to,
		Actor:        "operator-1",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.NewQuantity != 10 {
		t.Errorf("expected quantity unchanged at 10, got %d", entry.NewQuantity)
	}
}

func TestHistory_ClampsLimit(t *testing.T) {
	ctx := context.Background()

	var gotLimit int
	productRepo := &mockProductRepository{
		FindByIDFunc: func(ctx context.Context, id int) (*domain.Product, error) {
			return testProduct(5), nil
		},
	}
	entryRepo := &mockLedgerEntryRepository{
		ListByProductFunc: func(ctx context.Context, productID int, limit int) ([]domain.LedgerEntry, error) {
			gotLimit = limit
			return nil, nil
		},
	}

	svc := newTestStockService(productRepo, entryRepo)

	if _, err := svc.History(ctx, 3, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 100 {
		t.Errorf("expected default limit 100, got %d", gotLimit)
	}

	if _, err := svc.History(ctx, 3, 50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 50 {
		t.Errorf("expected limit 50, got %d", gotLimit)
	}
}
