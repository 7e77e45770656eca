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

type MySQLDrawerRepository struct {
	db *sql.DB
}

func NewMySQLDrawerRepository(db *sql.DB) *MySQLDrawerRepository {
	return &MySQLDrawerRepository{db: db}
}

const drawerColumns = `id, owner, status, openingBalance, expectedBalance, closingBalance, difference, openedAt, closedAt`

func scanDrawer(row *sql.Row) (*domain.CashDrawer, error) {
	var d domain.CashDrawer
	err := row.Scan(
		&d.ID, &d.Owner, &d.Status, &d.OpeningBalance, &d.ExpectedBalance,
		&d.ClosingBalance, &d.Difference, &d.OpenedAt, &d.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Insert opens a drawer. The openOwner column is NULL on closed drawers and
// carries the owner while open; its unique index is what enforces "at most
// one open drawer per owner" even under concurrent opens.
func (r *MySQLDrawerRepository) Insert(ctx context.Context, drawer *domain.CashDrawer) error {
	query := `
		INSERT INTO CashDrawers (id, owner, openOwner, status, openingBalance, expectedBalance, openedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		drawer.ID, drawer.Owner, drawer.Owner, drawer.Status,
		drawer.OpeningBalance, drawer.ExpectedBalance, drawer.OpenedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting cash drawer: %w", err)
	}

	return nil
}

func (r *MySQLDrawerRepository) FindOpenByOwner(ctx context.Context, owner string) (*domain.CashDrawer, error) {
	query := fmt.Sprintf(`SELECT %s FROM CashDrawers WHERE owner = ? AND status = ?`, drawerColumns)

	d, err := scanDrawer(r.db.QueryRowContext(ctx, query, owner, domain.DrawerStatusOpen))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no open drawer for owner %s", owner))
	}
	if err != nil {
		return nil, fmt.Errorf("querying open drawer: %w", err)
	}

	return d, nil
}

// FindOpenByOwnerForUpdate locks the open drawer row so concurrent cash
// sales serialize their expectedBalance increments.
func (r *MySQLDrawerRepository) FindOpenByOwnerForUpdate(ctx context.Context, tx *sql.Tx, owner string) (*domain.CashDrawer, error) {
	query := fmt.Sprintf(`SELECT %s FROM CashDrawers WHERE owner = ? AND status = ? FOR UPDATE`, drawerColumns)

	d, err := scanDrawer(tx.QueryRowContext(ctx, query, owner, domain.DrawerStatusOpen))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no open drawer for owner %s", owner))
	}
	if err != nil {
		return nil, fmt.Errorf("querying open drawer for update: %w", err)
	}

	return d, nil
}

func (r *MySQLDrawerRepository) IncrementExpectedTx(ctx context.Context, tx *sql.Tx, drawerID string, amount decimal.Decimal) error {
	query := `UPDATE CashDrawers SET expectedBalance = expectedBalance + ? WHERE id = ? AND status = ?`

	result, err := tx.ExecContext(ctx, query, amount, drawerID, domain.DrawerStatusOpen)
	if err != nil {
		return fmt.Errorf("incrementing expected balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("open drawer %s not found", drawerID))
	}

	return nil
}

// CloseTx freezes the expected balance and records the declared closing
// balance and the reconciliation difference.
func (r *MySQLDrawerRepository) CloseTx(ctx context.Context, tx *sql.Tx, drawerID string, closing, difference decimal.Decimal, closedAt time.Time) error {
	query := `
		UPDATE CashDrawers
		SET status = ?, openOwner = NULL, closingBalance = ?, difference = ?, closedAt = ?
		WHERE id = ? AND status = ?
	`

	result, err := tx.ExecContext(ctx, query,
		domain.DrawerStatusClosed, closing, difference, closedAt,
		drawerID, domain.DrawerStatusOpen,
	)
	if err != nil {
		return fmt.Errorf("closing cash drawer: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("open drawer %s not found", drawerID))
	}

	return nil
}
