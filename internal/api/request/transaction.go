package request

// CreateTransactionRequest is the body of POST /api/transactions.
// Timestamp accepts RFC3339 or YYYY-MM-DD and defaults to now. DedupeKey
// is an optional client-supplied idempotency token; when absent one is
// derived from the transaction's content.
type CreateTransactionRequest struct {
	UserID      string  `json:"userId"`
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	Side        string  `json:"side"`
	Price       float64 `json:"price,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Note        string  `json:"note,omitempty"`
	Fee         float64 `json:"fee,omitempty"`
	FeeCurrency string  `json:"feeCurrency,omitempty"`
	Exchange    string  `json:"exchange,omitempty"`
	ExtRef      string  `json:"extRef,omitempty"`
	DedupeKey   string  `json:"dedupeKey,omitempty"`
}

// BulkTransactionRow is one row of a bulk import. Same shape as a create
// request minus the user id, which applies to the whole import.
type BulkTransactionRow struct {
	Symbol      string  `json:"symbol"`
	Quantity    float64 `json:"quantity"`
	Side        string  `json:"side"`
	Price       float64 `json:"price,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
	Note        string  `json:"note,omitempty"`
	Fee         float64 `json:"fee,omitempty"`
	FeeCurrency string  `json:"feeCurrency,omitempty"`
	Exchange    string  `json:"exchange,omitempty"`
	ExtRef      string  `json:"extRef,omitempty"`
	DedupeKey   string  `json:"dedupeKey,omitempty"`
}

// BulkImportRequest is the body of POST /api/transactions/bulk.
type BulkImportRequest struct {
	UserID string               `json:"userId"`
	Rows   []BulkTransactionRow `json:"rows"`
}
