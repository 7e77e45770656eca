package repository

import (
	"context"
	"database/sql"
	"fmt"

	"bree/internal/domain"
)

type MySQLLedgerEntryRepository struct {
	db *sql.DB
}

func NewMySQLLedgerEntryRepository(db *sql.DB) *MySQLLedgerEntryRepository {
	return &MySQLLedgerEntryRepository{db: db}
}

const ledgerEntryColumns = `id, productId, type, quantity, previousQuantity, newQuantity,
	unitCost, totalValue, referenceId, referenceType, fromLocation, toLocation,
	note, createdBy, createdAt`

// Insert appends one immutable ledger entry. There is no update or delete
// path: reversals are new entries.
func (r *MySQLLedgerEntryRepository) Insert(ctx context.Context, tx *sql.Tx, entry *domain.LedgerEntry) (uint, error) {
	query := `
		INSERT INTO LedgerEntries
			(productId, type, quantity, previousQuantity, newQuantity,
			 unitCost, totalValue, referenceId, referenceType, fromLocation, toLocation,
			 note, createdBy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := tx.ExecContext(ctx, query,
		entry.ProductID, string(entry.Type), entry.Quantity,
		entry.PreviousQuantity, entry.NewQuantity,
		entry.UnitCost, entry.TotalValue,
		entry.ReferenceID, entry.ReferenceType,
		entry.FromLocation, entry.ToLocation,
		entry.Note, entry.CreatedBy,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting ledger entry: %w", err)
	}

	lastInsertID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting last insert id: %w", err)
	}

	return uint(lastInsertID), nil
}

func (r *MySQLLedgerEntryRepository) ListByProduct(ctx context.Context, productID int, limit int) ([]domain.LedgerEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM LedgerEntries
		WHERE productId = ?
		ORDER BY id DESC
		LIMIT ?`, ledgerEntryColumns)

	rows, err := r.db.QueryContext(ctx, query, productID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ledger entries: %w", err)
	}
	defer rows.Close()

	return scanLedgerEntries(rows)
}

// ListByReferenceTx reads the entries that reference a given document (e.g.
// the sale entries of one sale) inside the caller's transaction, so a
// cancellation reverses exactly what the original commit wrote.
func (r *MySQLLedgerEntryRepository) ListByReferenceTx(ctx context.Context, tx *sql.Tx, referenceID uint, referenceType string) ([]domain.LedgerEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM LedgerEntries
		WHERE referenceId = ? AND referenceType = ?
		ORDER BY id ASC`, ledgerEntryColumns)

	rows, err := tx.QueryContext(ctx, query, referenceID, referenceType)
	if err != nil {
		return nil, fmt.Errorf("querying ledger entries by reference: %w", err)
	}
	defer rows.Close()

	return scanLedgerEntries(rows)
}

// SumQuantities is the ledger-side stock projection: initial stock plus the
// sum of all signed deltas must equal Products.stock at any point in time.
// Transfers are excluded because their net effect on total stock is zero.
func (r *MySQLLedgerEntryRepository) SumQuantities(ctx context.Context, productID int) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM LedgerEntries
		WHERE productId = ? AND type <> ?
	`

	var sum int
	err := r.db.QueryRowContext(ctx, query, productID, string(domain.MovementTransfer)).Scan(&sum)
	if err != nil {
		return 0, fmt.Errorf("summing ledger quantities: %w", err)
	}

	return sum, nil
}

func scanLedgerEntries(rows *sql.Rows) ([]domain.LedgerEntry, error) {
	var entries []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		var movementType string
		err := rows.Scan(
			&e.ID, &e.ProductID, &movementType, &e.Quantity,
			&e.PreviousQuantity, &e.NewQuantity,
			&e.UnitCost, &e.TotalValue,
			&e.ReferenceID, &e.ReferenceType,
			&e.FromLocation, &e.ToLocation,
			&e.Note, &e.CreatedBy, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning ledger entry row: %w", err)
		}
		e.Type = domain.MovementType(movementType)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger entry rows: %w", err)
	}

	return entries, nil
}
