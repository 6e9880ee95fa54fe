package model

import "time"

// SnapshotPosition is one symbol's share of a daily snapshot breakdown.
type SnapshotPosition struct {
	Quantity float64 `json:"quantity"`
	Value    float64 `json:"value"`
	Price    float64 `json:"price"`
}

// Snapshot is the cached valuation of a user's portfolio for one calendar
// day. At most one snapshot exists per (user, date); writers upsert on
// that key. Past-day snapshots are permanently valid unless a retroactive
// ledger insert purges them.
type Snapshot struct {
	ID           string                      `json:"id"`
	UserID       string                      `json:"userId"`
	Date         time.Time                   `json:"date"` // day granularity, UTC midnight
	TotalValue   float64                     `json:"totalValue"`
	Breakdown    map[string]SnapshotPosition `json:"breakdown"`
	CalculatedAt time.Time                   `json:"calculatedAt,omitempty"`
}
