package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cryptofolio/backend/internal/model"
)

// PriceRepository provides data access methods for the historical_price table.
// Rows are populated incrementally by the backfill reconciler; gaps exist for
// dates never requested.
type PriceRepository struct {
	db *sql.DB
}

// NewPriceRepository creates a new repository instance.
func NewPriceRepository(db *sql.DB) *PriceRepository {
	return &PriceRepository{db: db}
}

// GetRange retrieves the symbol's stored prices with a date within
// [start, end], sorted by date ascending.
func (r *PriceRepository) GetRange(symbol string, start, end time.Time) ([]model.HistoricalPrice, error) {
	query := `
		SELECT id, symbol, date, price, source, last_updated
		FROM historical_price
		WHERE symbol = ?
		AND date >= ?
		AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.db.Query(query,
		symbol,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical_price table: %w", err)
	}
	defer rows.Close()

	prices := []model.HistoricalPrice{}

	for rows.Next() {
		var p model.HistoricalPrice
		var dateStr, lastUpdatedStr string

		err := rows.Scan(&p.ID, &p.Symbol, &dateStr, &p.Price, &p.Source, &lastUpdatedStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan historical_price results: %w", err)
		}

		p.Date, err = ParseTime(dateStr)
		if err != nil || p.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		p.LastUpdated, _ = ParseTime(lastUpdatedStr)

		prices = append(prices, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating historical_price table: %w", err)
	}

	return prices, nil
}

// GetRangeByDate returns the symbol's stored prices keyed by "2006-01-02"
// date string, the shape replay code consumes.
func (r *PriceRepository) GetRangeByDate(symbol string, start, end time.Time) (map[string]float64, error) {
	prices, err := r.GetRange(symbol, start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]float64, len(prices))
	for _, p := range prices {
		byDate[p.Date.Format("2006-01-02")] = p.Price
	}
	return byDate, nil
}

// BatchUpsert inserts or updates a set of daily prices inside one database
// transaction, keyed on (symbol, date).
func (r *PriceRepository) BatchUpsert(ctx context.Context, prices []model.HistoricalPrice) error {
	if len(prices) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	query := `
		INSERT INTO historical_price (id, symbol, date, price, source, last_updated)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(symbol, date) DO UPDATE SET
			price = excluded.price,
			source = excluded.source,
			last_updated = excluded.last_updated
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare price upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range prices {
		_, err := stmt.ExecContext(ctx,
			uuid.New().String(),
			p.Symbol,
			p.Date.Format("2006-01-02"),
			p.Price,
			p.Source,
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert price %s/%s: %w", p.Symbol, p.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit price upsert: %w", err)
	}
	return nil
}
