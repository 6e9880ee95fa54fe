package model

import "time"

// Transaction side values.
const (
	SideBuy      = "BUY"
	SideSell     = "SELL"
	SideTransfer = "TRANSFER"
)

// Transaction represents one immutable ledger entry for a user.
// Direction is encoded by Side; Quantity is always positive.
type Transaction struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Symbol      string    `json:"symbol"`
	Quantity    float64   `json:"quantity"`
	Price       float64   `json:"price,omitempty"`
	Side        string    `json:"side"`
	Timestamp   time.Time `json:"timestamp"`
	Note        string    `json:"note,omitempty"`
	Fee         float64   `json:"fee,omitempty"`
	FeeCurrency string    `json:"feeCurrency,omitempty"`
	Exchange    string    `json:"exchange,omitempty"`
	ExtRef      string    `json:"extRef,omitempty"`
	DedupeKey   string    `json:"dedupeKey"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// Position is the derived current holding of one symbol, computed by
// replaying the ledger. Never stored.
type Position struct {
	Symbol   string  `json:"symbol"`
	Quantity float64 `json:"quantity"`
	AvgPrice float64 `json:"avgPrice"`
}
