package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every pool connection to ":memory:" gets its own database, so the
	// pool must stay at a single shared connection.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the embedded goose migrations.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Append-only transaction ledger
		CREATE TABLE IF NOT EXISTS ledger_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			symbol VARCHAR(16) NOT NULL,
			quantity FLOAT NOT NULL,
			price FLOAT,
			side VARCHAR(8) NOT NULL,
			timestamp DATETIME NOT NULL,
			note TEXT,
			fee FLOAT DEFAULT 0,
			fee_currency VARCHAR(16),
			exchange VARCHAR(64),
			ext_ref VARCHAR(128),
			dedupe_key VARCHAR(64) NOT NULL UNIQUE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_ledger_user_time
			ON ledger_transaction (user_id, timestamp);

		-- Daily valuation cache, one row per (user, date)
		CREATE TABLE IF NOT EXISTS portfolio_snapshot (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			date DATE NOT NULL,
			total_value FLOAT NOT NULL,
			breakdown TEXT NOT NULL,
			calculated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_user_date UNIQUE (user_id, date)
		);

		-- Daily price cache, one row per (symbol, date)
		CREATE TABLE IF NOT EXISTS historical_price (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			symbol VARCHAR(16) NOT NULL,
			date DATE NOT NULL,
			price FLOAT NOT NULL,
			source VARCHAR(32) NOT NULL,
			last_updated DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_symbol_date UNIQUE (symbol, date)
		);

		-- Symbol to provider asset id resolution
		CREATE TABLE IF NOT EXISTS asset_mapping (
			symbol VARCHAR(16) NOT NULL PRIMARY KEY,
			provider_id VARCHAR(64) NOT NULL,
			name VARCHAR(64)
		);

		-- Encrypted provider API keys
		CREATE TABLE IF NOT EXISTS provider_config (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			provider VARCHAR(16) NOT NULL UNIQUE,
			api_key_encrypted TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`

	_, err := db.Exec(schema)
	return err
}
