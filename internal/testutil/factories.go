package testutil

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/cryptofolio/backend/internal/model"
)

// TransactionBuilder provides a fluent interface for creating test ledger rows.
//
// Example usage:
//
//	// Simple creation with defaults
//	tx := testutil.NewTransaction("user-1").Build(t, db)
//
//	// Customized transaction
//	tx := testutil.NewTransaction("user-1").
//	    WithSymbol("ETH").
//	    WithSide(model.SideSell).
//	    WithQuantity(0.5).
//	    OnDay("2026-08-20").
//	    Build(t, db)
type TransactionBuilder struct {
	ID        string
	UserID    string
	Symbol    string
	Quantity  float64
	Price     float64
	Side      string
	Timestamp time.Time
	Note      string
	DedupeKey string
}

// NewTransaction creates a TransactionBuilder with sensible defaults:
// a BUY of 1 BTC at $40,000, timestamped now.
func NewTransaction(userID string) *TransactionBuilder {
	id := uuid.New().String()
	return &TransactionBuilder{
		ID:        id,
		UserID:    userID,
		Symbol:    "BTC",
		Quantity:  1,
		Price:     40000,
		Side:      model.SideBuy,
		Timestamp: time.Now().UTC(),
		DedupeKey: id,
	}
}

// WithSymbol sets a custom symbol.
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	return b
}

// WithQuantity sets a custom quantity.
func (b *TransactionBuilder) WithQuantity(quantity float64) *TransactionBuilder {
	b.Quantity = quantity
	return b
}

// WithPrice sets a custom execution price.
func (b *TransactionBuilder) WithPrice(price float64) *TransactionBuilder {
	b.Price = price
	return b
}

// WithSide sets a custom side.
func (b *TransactionBuilder) WithSide(side string) *TransactionBuilder {
	b.Side = side
	return b
}

// WithTimestamp sets a custom timestamp.
func (b *TransactionBuilder) WithTimestamp(ts time.Time) *TransactionBuilder {
	b.Timestamp = ts
	return b
}

// OnDay sets the timestamp to noon UTC of the given YYYY-MM-DD day.
func (b *TransactionBuilder) OnDay(day string) *TransactionBuilder {
	parsed, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic("testutil: invalid day " + day)
	}
	b.Timestamp = parsed.Add(12 * time.Hour)
	return b
}

// WithDedupeKey sets a custom dedupe key.
func (b *TransactionBuilder) WithDedupeKey(key string) *TransactionBuilder {
	b.DedupeKey = key
	return b
}

// Transaction returns the built model without inserting it.
func (b *TransactionBuilder) Transaction() model.Transaction {
	return model.Transaction{
		ID:        b.ID,
		UserID:    b.UserID,
		Symbol:    b.Symbol,
		Quantity:  b.Quantity,
		Price:     b.Price,
		Side:      b.Side,
		Timestamp: b.Timestamp.UTC(),
		Note:      b.Note,
		DedupeKey: b.DedupeKey,
	}
}

// Build inserts the transaction into the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO ledger_transaction (id, user_id, symbol, quantity, price, side, timestamp, note, dedupe_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID,
		b.UserID,
		b.Symbol,
		b.Quantity,
		b.Price,
		b.Side,
		b.Timestamp.UTC().Format(time.RFC3339),
		b.Note,
		b.DedupeKey,
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:        b.ID,
		UserID:    b.UserID,
		Symbol:    b.Symbol,
		Quantity:  b.Quantity,
		Price:     b.Price,
		Side:      b.Side,
		Timestamp: b.Timestamp.UTC(),
		Note:      b.Note,
		DedupeKey: b.DedupeKey,
	}
}

// CreateSnapshot inserts a snapshot row for (userID, day) with the given
// total value and an empty breakdown.
func CreateSnapshot(t *testing.T, db *sql.DB, userID, day string, totalValue float64) {
	t.Helper()
	CreateSnapshotWithBreakdown(t, db, userID, day, totalValue, map[string]model.SnapshotPosition{})
}

// CreateSnapshotWithBreakdown inserts a snapshot row with a full breakdown.
func CreateSnapshotWithBreakdown(t *testing.T, db *sql.DB, userID, day string, totalValue float64, breakdown map[string]model.SnapshotPosition) {
	t.Helper()

	encoded, err := json.Marshal(breakdown)
	if err != nil {
		t.Fatalf("Failed to encode breakdown: %v", err)
	}

	query := `
		INSERT INTO portfolio_snapshot (id, user_id, date, total_value, breakdown, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = db.Exec(query,
		uuid.New().String(),
		userID,
		day,
		totalValue,
		string(encoded),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test snapshot: %v", err)
	}
}

// CreateHistoricalPrice inserts a price row for (symbol, day).
func CreateHistoricalPrice(t *testing.T, db *sql.DB, symbol, day string, price float64) {
	t.Helper()

	query := `
		INSERT INTO historical_price (id, symbol, date, price, source)
		VALUES (?, ?, ?, ?, 'test')
	`
	if _, err := db.Exec(query, uuid.New().String(), symbol, day, price); err != nil {
		t.Fatalf("Failed to create test price: %v", err)
	}
}

// CreateAssetMapping inserts a symbol to provider id mapping.
func CreateAssetMapping(t *testing.T, db *sql.DB, symbol, providerID string) {
	t.Helper()

	query := `INSERT INTO asset_mapping (symbol, provider_id, name) VALUES (?, ?, ?)`
	if _, err := db.Exec(query, symbol, providerID, symbol); err != nil {
		t.Fatalf("Failed to create test asset mapping: %v", err)
	}
}

// CountRows returns the number of rows in a table matching the condition.
func CountRows(t *testing.T, db *sql.DB, table, condition string, args ...any) int {
	t.Helper()

	query := "SELECT COUNT(*) FROM " + table
	if condition != "" {
		query += " WHERE " + condition
	}

	var count int
	if err := db.QueryRow(query, args...).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return count
}
