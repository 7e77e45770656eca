package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	_ "github.com/go-sql-driver/mysql"
)

// SetupTestDB opens the integration-test database. Tests that need it are
// skipped when no MySQL instance named 'bree_test' is reachable on
// localhost:3306.
func SetupTestDB(t *testing.T) *sql.DB {
	dsn := "root:@tcp(localhost:3306)/bree_test?parseTime=true"
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("test database not available: %v", err)
	}

	return db
}

// CleanupTestDB empties every table and closes the connection.
func CleanupTestDB(t *testing.T, db *sql.DB) {
	if db == nil {
		return
	}

	tables := []string{"LedgerEntries", "Sales", "CashDrawers", "Customers", "Products"}
	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}

	db.Close()
}

// SetupTestTables creates the schema used by the integration tests.
func SetupTestTables(t *testing.T, db *sql.DB) {
	createProductsTable := `
	CREATE TABLE IF NOT EXISTS Products (
		id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
		sku VARCHAR(64) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		unitPrice DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		unitCost DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		stock INT NOT NULL DEFAULT 0,
		reorderThreshold INT NOT NULL DEFAULT 0,
		taxRate DECIMAL(5,2) NOT NULL DEFAULT 0.00,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`

	createLedgerEntriesTable := `
	CREATE TABLE IF NOT EXISTS LedgerEntries (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		productId INT NOT NULL,
		type VARCHAR(20) NOT NULL,
		quantity INT NOT NULL,
		previousQuantity INT NOT NULL,
		newQuantity INT NOT NULL,
		unitCost DECIMAL(12,2) NOT NULL,
		totalValue DECIMAL(14,2) NOT NULL,
		referenceId INT UNSIGNED,
		referenceType VARCHAR(30),
		fromLocation VARCHAR(100),
		toLocation VARCHAR(100),
		note TEXT,
		createdBy VARCHAR(100) NOT NULL DEFAULT '',
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (productId) REFERENCES Products(id),
		INDEX idx_product (productId),
		INDEX idx_reference (referenceId, referenceType)
	)`

	createSalesTable := `
	CREATE TABLE IF NOT EXISTS Sales (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		number VARCHAR(20) NOT NULL UNIQUE,
		saleDay DATE NOT NULL,
		seq INT NOT NULL,
		items JSON NOT NULL,
		subtotal DECIMAL(12,2) NOT NULL,
		tax DECIMAL(12,2) NOT NULL,
		discount DECIMAL(12,2) NOT NULL DEFAULT 0.00,
		total DECIMAL(12,2) NOT NULL,
		paymentMethod VARCHAR(20) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'completed',
		customerId INT UNSIGNED,
		operator VARCHAR(100) NOT NULL,
		notes TEXT NOT NULL,
		createdAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updatedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_day_seq (saleDay, seq),
		INDEX idx_customer (customerId)
	)`

	createCashDrawersTable := `
	CREATE TABLE IF NOT EXISTS CashDrawers (
		id CHAR(36) NOT NULL PRIMARY KEY,
		owner VARCHAR(100) NOT NULL,
		openOwner VARCHAR(100) NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'open',
		openingBalance DECIMAL(12,2) NOT NULL,
		expectedBalance DECIMAL(12,2) NOT NULL,
		closingBalance DECIMAL(12,2),
		difference DECIMAL(12,2),
		openedAt DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		closedAt DATETIME,
		UNIQUE KEY uq_open_owner (openOwner),
		INDEX idx_owner (owner)
	)`

	createCustomersTable := `
	CREATE TABLE IF NOT EXISTS Customers (
		id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		totalPurchases DECIMAL(14,2) NOT NULL DEFAULT 0.00,
		lastPurchase DATETIME
	)`

	tables := []struct {
		name  string
		query string
	}{
		{"Products", createProductsTable},
		{"LedgerEntries", createLedgerEntriesTable},
		{"Sales", createSalesTable},
		{"CashDrawers", createCashDrawersTable},
		{"Customers", createCustomersTable},
	}

	for _, tbl := range tables {
		if _, err := db.Exec(tbl.query); err != nil {
			t.Logf("failed to create table %s: %v", tbl.name, err)
		}
	}
}
