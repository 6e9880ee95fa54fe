package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cryptofolio/backend/internal/apperrors"
	"github.com/cryptofolio/backend/internal/model"
)

// TransactionRepository provides data access methods for the ledger_transaction table.
// The ledger is append-only: rows are inserted through an upsert keyed on the
// dedupe key and are never mutated otherwise.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `
	id, user_id, symbol, quantity, price, side, timestamp,
	note, fee, fee_currency, exchange, ext_ref, dedupe_key, created_at
`

const upsertTransactionQuery = `
	INSERT INTO ledger_transaction (
		id, user_id, symbol, quantity, price, side, timestamp,
		note, fee, fee_currency, exchange, ext_ref, dedupe_key
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(dedupe_key) DO UPDATE SET
		quantity = excluded.quantity,
		price = excluded.price,
		note = excluded.note,
		fee = excluded.fee,
		fee_currency = excluded.fee_currency,
		exchange = excluded.exchange,
		ext_ref = excluded.ext_ref
`

// Upsert inserts a transaction, or updates the existing row when one with the
// same dedupe key is already stored. Two inserts with the same dedupe key
// therefore collapse to a single ledger row.
func (r *TransactionRepository) Upsert(ctx context.Context, t *model.Transaction) error {
	_, err := r.db.ExecContext(ctx, upsertTransactionQuery,
		t.ID,
		t.UserID,
		t.Symbol,
		t.Quantity,
		t.Price,
		t.Side,
		t.Timestamp.UTC().Format(time.RFC3339),
		t.Note,
		t.Fee,
		t.FeeCurrency,
		t.Exchange,
		t.ExtRef,
		t.DedupeKey,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert transaction: %w", err)
	}
	return nil
}

// BatchUpsert inserts or updates a set of transactions inside one database
// transaction. Used by the bulk import path so a partial failure never leaves
// half an import behind.
func (r *TransactionRepository) BatchUpsert(ctx context.Context, transactions []model.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx, upsertTransactionQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := range transactions {
		t := &transactions[i]
		_, err := stmt.ExecContext(ctx,
			t.ID,
			t.UserID,
			t.Symbol,
			t.Quantity,
			t.Price,
			t.Side,
			t.Timestamp.UTC().Format(time.RFC3339),
			t.Note,
			t.Fee,
			t.FeeCurrency,
			t.Exchange,
			t.ExtRef,
			t.DedupeKey,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert transaction %s: %w", t.DedupeKey, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch upsert: %w", err)
	}
	return nil
}

// GetByUser retrieves every transaction for the user, sorted by timestamp
// ascending. Ledger replay depends on this ordering.
func (r *TransactionRepository) GetByUser(userID string) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transaction
		WHERE user_id = ?
		ORDER BY timestamp ASC
	`
	return r.queryTransactions(query, userID)
}

// GetByUserRange retrieves the user's transactions with a timestamp within
// [start, end], sorted by timestamp ascending.
func (r *TransactionRepository) GetByUserRange(userID string, start, end time.Time) ([]model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transaction
		WHERE user_id = ?
		AND timestamp >= ?
		AND timestamp <= ?
		ORDER BY timestamp ASC
	`
	return r.queryTransactions(query,
		userID,
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
	)
}

// Get retrieves a single transaction by ID.
// Returns apperrors.ErrTransactionNotFound if no row exists.
func (r *TransactionRepository) Get(id string) (model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transaction
		WHERE id = ?
	`
	rows, err := r.queryTransactions(query, id)
	if err != nil {
		return model.Transaction{}, err
	}
	if len(rows) == 0 {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	return rows[0], nil
}

// ListUserIDs returns the distinct user ids that have ledger activity.
// Used by the nightly snapshot refresh.
func (r *TransactionRepository) ListUserIDs() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT user_id FROM ledger_transaction ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user ids: %w", err)
	}
	return ids, nil
}

func (r *TransactionRepository) queryTransactions(query string, args ...any) ([]model.Transaction, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger_transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}

	for rows.Next() {
		var t model.Transaction
		var timestampStr, createdAtStr string
		var price sql.NullFloat64
		var note, feeCurrency, exchange, extRef sql.NullString
		var fee sql.NullFloat64

		err := rows.Scan(
			&t.ID,
			&t.UserID,
			&t.Symbol,
			&t.Quantity,
			&price,
			&t.Side,
			&timestampStr,
			&note,
			&fee,
			&feeCurrency,
			&exchange,
			&extRef,
			&t.DedupeKey,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger_transaction results: %w", err)
		}

		t.Timestamp, err = ParseTime(timestampStr)
		if err != nil || t.Timestamp.IsZero() {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		t.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			// created_at comes from SQLite's CURRENT_TIMESTAMP
			t.CreatedAt, err = time.Parse("2006-01-02 15:04:05", createdAtStr)
			if err != nil {
				return nil, fmt.Errorf("failed to parse created_at: %w", err)
			}
		}

		t.Price = price.Float64
		t.Note = note.String
		t.Fee = fee.Float64
		t.FeeCurrency = feeCurrency.String
		t.Exchange = exchange.String
		t.ExtRef = extRef.String

		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger_transaction table: %w", err)
	}

	return transactions, nil
}
