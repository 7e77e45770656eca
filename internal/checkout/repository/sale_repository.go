package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"bree/internal/domain"
	"bree/internal/errors"
)

type MySQLSaleRepository struct {
	db *sql.DB
}

func NewMySQLSaleRepository(db *sql.DB) *MySQLSaleRepository {
	return &MySQLSaleRepository{db: db}
}

const saleColumns = `id, number, items, subtotal, tax, discount, total,
	paymentMethod, status, customerId, operator, notes, createdAt, updatedAt`

// NextSequenceForDay reads the highest sequence already issued for the day,
// under lock, so that concurrent checkouts cannot draw the same number. The
// unique index on (saleDay, seq) backstops this read in case the lock is
// ever bypassed.
func (r *MySQLSaleRepository) NextSequenceForDay(ctx context.Context, tx *sql.Tx, day time.Time) (int, error) {
	query := `SELECT COALESCE(MAX(seq), 0) FROM Sales WHERE saleDay = ? FOR UPDATE`

	var maxSeq int
	err := tx.QueryRowContext(ctx, query, day.Format("2006-01-02")).Scan(&maxSeq)
	if err != nil {
		return 0, fmt.Errorf("querying max sale sequence: %w", err)
	}

	return maxSeq + 1, nil
}

// Insert writes the sale with its frozen line-item snapshot as JSON.
func (r *MySQLSaleRepository) Insert(ctx context.Context, tx *sql.Tx, sale *domain.Sale, day time.Time, seq int) (uint, error) {
	items, err := json.Marshal(sale.Items)
	if err != nil {
		return 0, fmt.Errorf("marshaling sale items: %w", err)
	}

	query := `
		INSERT INTO Sales
			(number, saleDay, seq, items, subtotal, tax, discount, total,
			 paymentMethod, status, customerId, operator, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		sale.Number, day.Format("2006-01-02"), seq, items,
		sale.Subtotal, sale.Tax, sale.Discount, sale.Total,
		sale.PaymentMethod, sale.Status, sale.CustomerID, sale.Operator, sale.Notes,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting sale: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLSaleRepository) FindByID(ctx context.Context, id uint) (*domain.Sale, error) {
	query := fmt.Sprintf(`SELECT %s FROM Sales WHERE id = ?`, saleColumns)
	return r.scanSale(r.db.QueryRowContext(ctx, query, id), id)
}

// FindByIDForUpdate locks the sale row so concurrent cancellations of the
// same sale serialize on the status check.
func (r *MySQLSaleRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id uint) (*domain.Sale, error) {
	query := fmt.Sprintf(`SELECT %s FROM Sales WHERE id = ? FOR UPDATE`, saleColumns)
	return r.scanSale(tx.QueryRowContext(ctx, query, id), id)
}

func (r *MySQLSaleRepository) UpdateStatusAndNotesTx(ctx context.Context, tx *sql.Tx, id uint, status, notes string) error {
	query := `UPDATE Sales SET status = ?, notes = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, status, notes, id)
	if err != nil {
		return fmt.Errorf("updating sale status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("sale with id %d not found", id))
	}

	return nil
}

func (r *MySQLSaleRepository) scanSale(row *sql.Row, id uint) (*domain.Sale, error) {
	var sale domain.Sale
	var items []byte

	err := row.Scan(
		&sale.ID, &sale.Number, &items,
		&sale.Subtotal, &sale.Tax, &sale.Discount, &sale.Total,
		&sale.PaymentMethod, &sale.Status, &sale.CustomerID, &sale.Operator,
		&sale.Notes, &sale.CreatedAt, &sale.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("sale with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying sale: %w", err)
	}

	if err := json.Unmarshal(items, &sale.Items); err != nil {
		return nil, fmt.Errorf("unmarshaling sale items: %w", err)
	}

	return &sale, nil
}
