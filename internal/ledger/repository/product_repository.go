package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bree/internal/domain"
	"bree/internal/errors"
)

type MySQLProductRepository struct {
	db *sql.DB
}

func NewMySQLProductRepository(db *sql.DB) *MySQLProductRepository {
	return &MySQLProductRepository{db: db}
}

const productColumns = `id, sku, name, unitPrice, unitCost, stock, reorderThreshold, taxRate, status, createdAt, updatedAt`

func scanProduct(row *sql.Row) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.SKU, &p.Name, &p.UnitPrice, &p.UnitCost, &p.Stock,
		&p.ReorderThreshold, &p.TaxRate, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *MySQLProductRepository) FindByID(ctx context.Context, id int) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM Products WHERE id = ?`, productColumns)

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product by id: %w", err)
	}

	return p, nil
}

// FindByIDForUpdate locks the product row for the remainder of the
// transaction. Callers must lock products in ascending id order to avoid
// deadlocks between concurrent checkouts.
func (r *MySQLProductRepository) FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Product, error) {
	query := fmt.Sprintf(`SELECT %s FROM Products WHERE id = ? FOR UPDATE`, productColumns)

	p, err := scanProduct(tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying product for update: %w", err)
	}

	return p, nil
}

// UpdateStock writes the new cached stock projection. Only the ledger
// service may call this, and only inside the transaction that appends the
// matching ledger entry.
func (r *MySQLProductRepository) UpdateStock(ctx context.Context, tx *sql.Tx, id int, newQty int) error {
	query := `UPDATE Products SET stock = ? WHERE id = ?`

	result, err := tx.ExecContext(ctx, query, newQty, id)
	if err != nil {
		return fmt.Errorf("updating product stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("product with id %d not found", id))
	}

	return nil
}
