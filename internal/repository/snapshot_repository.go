package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cryptofolio/backend/internal/model"
)

// SnapshotRepository provides data access methods for the portfolio_snapshot table.
//
// The table is a derived cache: one row per (user, date) holding that day's
// total valuation and its per-symbol breakdown. Losing it loses nothing but
// recomputation time; the ledger remains the source of truth.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new repository instance.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// GetRange retrieves the user's snapshots with a date within [start, end],
// sorted by date ascending.
func (r *SnapshotRepository) GetRange(userID string, start, end time.Time) ([]model.Snapshot, error) {
	query := `
		SELECT id, user_id, date, total_value, breakdown, calculated_at
		FROM portfolio_snapshot
		WHERE user_id = ?
		AND date >= ?
		AND date <= ?
		ORDER BY date ASC
	`

	rows, err := r.db.Query(query,
		userID,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio_snapshot table: %w", err)
	}
	defer rows.Close()

	snapshots := []model.Snapshot{}

	for rows.Next() {
		var s model.Snapshot
		var dateStr, calculatedAtStr, breakdownJSON string

		err := rows.Scan(
			&s.ID,
			&s.UserID,
			&dateStr,
			&s.TotalValue,
			&breakdownJSON,
			&calculatedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan portfolio_snapshot results: %w", err)
		}

		s.Date, err = ParseTime(dateStr)
		if err != nil || s.Date.IsZero() {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		s.CalculatedAt, _ = ParseTime(calculatedAtStr)

		if err := json.Unmarshal([]byte(breakdownJSON), &s.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot breakdown: %w", err)
		}

		snapshots = append(snapshots, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio_snapshot table: %w", err)
	}

	return snapshots, nil
}

// Upsert stores the valuation for (userID, date), updating in place when a
// row for that key already exists. Calling it twice for the same key leaves
// exactly one row bearing the last write's values.
func (r *SnapshotRepository) Upsert(userID string, date time.Time, totalValue float64, breakdown map[string]model.SnapshotPosition) error {
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot breakdown: %w", err)
	}

	query := `
		INSERT INTO portfolio_snapshot (id, user_id, date, total_value, breakdown, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			total_value = excluded.total_value,
			breakdown = excluded.breakdown,
			calculated_at = excluded.calculated_at
	`

	_, err = r.db.Exec(query,
		uuid.New().String(),
		userID,
		date.Format("2006-01-02"),
		totalValue,
		string(breakdownJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert snapshot: %w", err)
	}
	return nil
}

// PurgeAfter deletes every snapshot for the user dated strictly after the
// given day. Called when a transaction is inserted retroactively: cached
// totals downstream of the edit are stale and must be recomputed on the
// next history read.
func (r *SnapshotRepository) PurgeAfter(userID string, date time.Time) error {
	query := `
		DELETE FROM portfolio_snapshot
		WHERE user_id = ?
		AND date > ?
	`

	_, err := r.db.Exec(query, userID, date.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("failed to purge snapshots: %w", err)
	}
	return nil
}
