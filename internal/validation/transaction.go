package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/cryptofolio/backend/internal/api/request"
)

// ValidSide contains the allowed transaction side values.
var ValidSide = map[string]bool{
	"BUY": true, "SELL": true, "TRANSFER": true,
}

// ValidateCreateTransaction validates a transaction creation request.
//
// Required fields:
//   - userId: non-empty
//   - symbol: non-empty
//   - side: one of BUY, SELL, TRANSFER
//   - quantity: strictly positive
//
// Optional fields (validated if provided):
//   - timestamp: RFC3339 or YYYY-MM-DD
//   - price, fee: non-negative
//
// Returns a validation Error with field-specific messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.UserID) == "" {
		errors["userId"] = "userId is required"
	}

	validateRow(errors, "", request.BulkTransactionRow{
		Symbol:    req.Symbol,
		Quantity:  req.Quantity,
		Side:      req.Side,
		Price:     req.Price,
		Timestamp: req.Timestamp,
		Fee:       req.Fee,
	})

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

// ValidateBulkImport validates a bulk import request. Row errors are keyed
// by their index (e.g. "rows[3].side") so callers can pinpoint bad rows.
func ValidateBulkImport(req request.BulkImportRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.UserID) == "" {
		errors["userId"] = "userId is required"
	}
	if len(req.Rows) == 0 {
		errors["rows"] = "rows must not be empty"
	}

	for i, row := range req.Rows {
		validateRow(errors, fmt.Sprintf("rows[%d].", i), row)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}

func validateRow(errors map[string]string, prefix string, row request.BulkTransactionRow) {
	if strings.TrimSpace(row.Symbol) == "" {
		errors[prefix+"symbol"] = "symbol is required"
	}

	if strings.TrimSpace(row.Side) == "" {
		errors[prefix+"side"] = "side is required"
	} else if !ValidSide[row.Side] {
		errors[prefix+"side"] = fmt.Sprintf("invalid side: %s", row.Side)
	}

	if row.Quantity <= 0 {
		errors[prefix+"quantity"] = "quantity must be positive"
	}

	if row.Price < 0 {
		errors[prefix+"price"] = "price cannot be negative"
	}

	if row.Fee < 0 {
		errors[prefix+"fee"] = "fee cannot be negative"
	}

	if strings.TrimSpace(row.Timestamp) != "" {
		if _, err := time.Parse(time.RFC3339, row.Timestamp); err != nil {
			if _, err := time.Parse("2006-01-02", row.Timestamp); err != nil {
				errors[prefix+"timestamp"] = "timestamp must be RFC3339 or YYYY-MM-DD"
			}
		}
	}
}
