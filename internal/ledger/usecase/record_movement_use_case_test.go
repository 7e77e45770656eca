package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bree/internal/audit"
	"bree/internal/domain"
	"bree/internal/dto"
	apperrors "bree/internal/errors"
	"bree/internal/ledger/service"
)

type mockStockService struct {
	CheckAvailabilityFunc func(ctx context.Context, productID int, requested int) (*dto.Availability, error)
	RecordFunc            func(ctx context.Context, m service.Movement) (*domain.LedgerEntry, error)
	HistoryFunc           func(ctx context.Context, productID int, limit int) ([]domain.LedgerEntry, error)
}

func (m *mockStockService) CheckAvailability(ctx context.Context, productID int, requested int) (*dto.Availability, error) {
	return m.CheckAvailabilityFunc(ctx, productID, requested)
}

func (m *mockStockService) Record(ctx context.Context, movement service.Movement) (*domain.LedgerEntry, error) {
	return m.RecordFunc(ctx, movement)
}

func (m *mockStockService) History(ctx context.Context, productID int, limit int) ([]domain.LedgerEntry, error) {
	return m.HistoryFunc(ctx, productID, limit)
}

func newTestRecordMovementUseCase(svc StockService) *RecordMovementUseCase {
	return NewRecordMovementUseCase(svc, audit.NopRecorder{}, zap.NewNop(), 3)
}

func TestRecordMovement_Validation(t *testing.T) {
	ctx := context.Background()

	uc := newTestRecordMovementUseCase(&mockStockService{})

	negativeCost := decimal.RequireFromString("-1.00")

	cases := []struct {
		name      string
		actor     string
		productID int
		req       dto.RecordMovementRequest
	}{
		{"missing actor", "", 1, dto.RecordMovementRequest{Type: "entry", Quantity: 5}},
		{"zero product id", "operator-1", 0, dto.RecordMovementRequest{Type: "entry", Quantity: 5}},
		{"unknown type", "operator-1", 1, dto.RecordMovementRequest{Type: "restock", Quantity: 5}},
		{"zero quantity", "operator-1", 1, dto.RecordMovementRequest{Type: "adjustment", Quantity: 0}},
		{"negative unit cost", "operator-1", 1, dto.RecordMovementRequest{Type: "entry", Quantity: 5, UnitCost: &negativeCost}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.RecordMovement(ctx, tc.actor, tc.productID, tc.req)
			if err == nil {
				t.Fatalf("expected error, got nil")
			}
			if _, ok := apperrors.IsValidationError(err); !ok {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestRecordMovement_RejectsSaleAndReturnTypes(t *testing.T) {
	ctx := context.Background()

	uc := newTestRecordMovementUseCase(&mockStockService{
		RecordFunc: func(ctx context.Context, m service.Movement) (*domain.LedgerEntry, error) {
			t.Fatalf("sale-typed movement must never reach the service")
			return nil, nil
		},
	})

	for _, movementType := range []string{"sale", "return"} {
		_, err := uc.RecordMovement(ctx, "operator-1", 1, dto.RecordMovementRequest{
			Type:     movementType,
			Quantity: -1,
		})
		if _, ok := apperrors.IsValidationError(err); !ok {
			t.Errorf("type=%s: expected ValidationError, got %v", movementType, err)
		}
	}
}

func TestRecordMovement_TagsManualReference(t *testing.T) {
	ctx := context.Background()

	var recorded service.Movement
	svc := &mockStockService{
		RecordFunc: func(ctx context.Context, m service.Movement) (*domain.LedgerEntry, error) {
			recorded = m
			return &domain.LedgerEntry{ID: 1, NewQuantity: 15}, nil
		},
	}

	uc := newTestRecordMovementUseCase(svc)

	_, err := uc.RecordMovement(ctx, "operator-1", 3, dto.RecordMovementRequest{
		Type:     "entry",
		Quantity: 5,
		Note:     "weekly delivery",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded.ReferenceType == nil || *recorded.ReferenceType != domain.ReferenceTypeManual {
		t.Errorf("expected manual reference type, got %v", recorded.ReferenceType)
	}
	if recorded.Actor != "operator-1" {
		t.Errorf("expected actor carried through, got %q", recorded.Actor)
	}
}

func TestRecordMovement_TransferCarriesNoReference(t *testing.T) {
	ctx := context.Background()

	var recorded service.Movement
	svc := &mockStockService{
		RecordFunc: func(ctx context.Context, m service.Movement) (*domain.LedgerEntry, error) {
			recorded = m
			return &domain.LedgerEntry{ID: 2, NewQuantity: 10}, nil
		},
	}

	uc := newTestRecordMovementUseCase(svc)

	from, to := "warehouse", "floor"
	_, err := uc.RecordMovement(ctx, "operator-1", 3, dto.RecordMovementRequest{
		Type:         "transfer",
		Quantity:     4,
		FromLocation: &from,
		ToLocation:   &to,
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded.ReferenceType != nil {
		t.Errorf("transfers must not carry a reference type, got %v", *recorded.ReferenceType)
	}
}

func TestRecordMovement_RetriesOnDeadlock(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	svc := &mockStockService{
		RecordFunc: func(ctx context.Context, m service.Movement) (*domain.LedgerEntry, error) {
			attempts++
			if attempts < 2 {
				return nil, &mysql.MySQLError{Number: 1213}
			}
			return &domain.LedgerEntry{ID: 1, NewQuantity: 5}, nil
		},
	}

	uc := newTestRecordMovementUseCase(svc)

	_, err := uc.RecordMovement(ctx, "operator-1", 1, dto.RecordMovementRequest{
		Type:     "entry",
		Quantity: 5,
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestRecordMovement_InsufficientStockNotRetried(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	shortfall := apperrors.NewInsufficientStockError(1, 5, 2)
	svc := &mockStockService{
		RecordFunc: func(ctx context.Context, m service.Movement) (*domain.LedgerEntry, error) {
			attempts++
			return nil, shortfall
		},
	}

	uc := newTestRecordMovementUseCase(svc)

	_, err := uc.RecordMovement(ctx, "operator-1", 1, dto.RecordMovementRequest{
		Type:     "withdrawal",
		Quantity: -5,
	})

	if !errors.Is(err, shortfall) {
		t.Errorf("expected the shortfall error verbatim, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestRecordMovement_EmitsAuditEvent(t *testing.T) {
	ctx := context.Background()

	var events []audit.Event
	recorder := recorderFunc(func(e audit.Event) { events = append(events, e) })

	svc := &mockStockService{
		RecordFunc: func(ctx context.Context, m service.Movement) (*domain.LedgerEntry, error) {
			return &domain.LedgerEntry{ID: 9, NewQuantity: 20}, nil
		},
	}

	uc := NewRecordMovementUseCase(svc, recorder, zap.NewNop(), 3)

	_, err := uc.RecordMovement(ctx, "operator-1", 3, dto.RecordMovementRequest{
		Type:     "entry",
		Quantity: 5,
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(events))
	}
	if events[0].Action != "stock.movement.recorded" {
		t.Errorf("unexpected audit action: %s", events[0].Action)
	}
}

type recorderFunc func(audit.Event)

func (f recorderFunc) Record(e audit.Event) { f(e) }
