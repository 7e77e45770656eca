package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bree/internal/domain"
	"bree/internal/errors"
)

// MySQLCustomerRepository mutates the customer purchase aggregates. The
// customer entity itself is owned by customer management; this core only
// touches totalPurchases and lastPurchase, inside the checkout transaction.
type MySQLCustomerRepository struct {
	db *sql.DB
}

func NewMySQLCustomerRepository(db *sql.DB) *MySQLCustomerRepository {
	return &MySQLCustomerRepository{db: db}
}

func (r *MySQLCustomerRepository) FindByID(ctx context.Context, id uint) (*domain.Customer, error) {
	query := `SELECT id, name, totalPurchases, lastPurchase FROM Customers WHERE id = ?`

	var c domain.Customer
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.TotalPurchases, &c.LastPurchase)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("customer with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer by id: %w", err)
	}

	return &c, nil
}

func (r *MySQLCustomerRepository) RegisterPurchaseTx(ctx context.Context, tx *sql.Tx, id uint, amount decimal.Decimal, when time.Time) error {
	query := `UPDATE Customers SET totalPurchases = totalPurchases + ?, lastPurchase = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, amount, when, id)
	if err != nil {
		return fmt.Errorf("registering customer purchase: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("customer with id %d not found", id))
	}

	return nil
}

// ReversePurchaseTx decrements totalPurchases on cancellation, floored at
// zero so historical data problems never drive the aggregate negative.
func (r *MySQLCustomerRepository) ReversePurchaseTx(ctx context.Context, tx *sql.Tx, id uint, amount decimal.Decimal) error {
	query := `UPDATE Customers SET totalPurchases = GREATEST(0, totalPurchases - ?) WHERE id = ?`

	// No rows-affected check here: an aggregate already at zero is a
	// legitimate no-change update.
	if _, err := tx.ExecContext(ctx, query, amount, id); err != nil {
		return fmt.Errorf("reversing customer purchase: %w", err)
	}

	return nil
}
