package model

import "time"

// HistoricalPrice is one cached daily closing price for a symbol.
// At most one row exists per (symbol, date); writers upsert on that key.
type HistoricalPrice struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Date        time.Time `json:"date"` // day granularity, UTC midnight
	Price       float64   `json:"price"`
	Source      string    `json:"source"`
	LastUpdated time.Time `json:"lastUpdated,omitempty"`
}

// AssetMapping resolves a ticker symbol to the provider-specific asset id
// used by the upstream price APIs.
type AssetMapping struct {
	Symbol     string `json:"symbol"`
	ProviderID string `json:"providerId"`
	Name       string `json:"name,omitempty"`
}
