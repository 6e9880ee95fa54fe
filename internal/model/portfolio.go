package model

import "time"

// PortfolioAsset is one priced holding inside a current-portfolio response.
type PortfolioAsset struct {
	Symbol       string  `json:"symbol"`
	Quantity     float64 `json:"quantity"`
	AvgPrice     float64 `json:"avgPrice"`
	CurrentPrice float64 `json:"currentPrice"`
	Value        float64 `json:"value"`
	Invested     float64 `json:"invested"`
	Pnl          float64 `json:"pnl"`
	PnlPercent   float64 `json:"pnlPercent"`
}

// Portfolio is the live valuation of a user's holdings.
type Portfolio struct {
	Assets          []PortfolioAsset `json:"assets"`
	TotalValue      float64          `json:"totalValue"`
	TotalInvested   float64          `json:"totalInvested"`
	TotalPnl        float64          `json:"totalPnl"`
	TotalPnlPercent float64          `json:"totalPnlPercent"`
	LastUpdated     time.Time        `json:"lastUpdated"`
}

// HistoryPoint is one day in a portfolio history series.
type HistoryPoint struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Value  float64 `json:"value"`
	Change float64 `json:"change"`
}

// PortfolioHistory is the time-series response for a history request.
// Degraded is set when the series is a placeholder produced because an
// upstream dependency was unavailable, so clients can tell it apart
// from real data.
type PortfolioHistory struct {
	Points             []HistoryPoint `json:"points"`
	TotalReturn        float64        `json:"totalReturn"`
	TotalReturnPercent float64        `json:"totalReturnPercent"`
	Degraded           bool           `json:"degraded,omitempty"`
}
