package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/cryptofolio/backend/internal/api/request"
	"github.com/cryptofolio/backend/internal/apperrors"
)

func TestRangeDays(t *testing.T) {
	tests := []struct {
		token string
		want  int
	}{
		{"7d", 7},
		{"30d", 30},
		{"1y", 365},
	}

	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			got, err := RangeDays(tc.token)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Expected %d days, got %d", tc.want, got)
			}
		})
	}

	t.Run("unknown tokens are rejected, not clamped", func(t *testing.T) {
		for _, token := range []string{"", "90d", "1m", "7D", "all"} {
			if _, err := RangeDays(token); !errors.Is(err, apperrors.ErrInvalidRange) {
				t.Errorf("Expected ErrInvalidRange for %q, got %v", token, err)
			}
		}
	})
}

func TestValidateCreateTransaction(t *testing.T) {
	valid := func() request.CreateTransactionRequest {
		return request.CreateTransactionRequest{
			UserID:    "user-1",
			Symbol:    "BTC",
			Quantity:  1,
			Price:     40000,
			Side:      "BUY",
			Timestamp: "2024-03-01",
		}
	}

	t.Run("accepts a valid request", func(t *testing.T) {
		if err := ValidateCreateTransaction(valid()); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})

	t.Run("accepts omitted optional fields", func(t *testing.T) {
		req := valid()
		req.Price = 0
		req.Timestamp = ""
		if err := ValidateCreateTransaction(req); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})

	t.Run("collects all field errors at once", func(t *testing.T) {
		err := ValidateCreateTransaction(request.CreateTransactionRequest{
			Side:     "SHORT",
			Quantity: -1,
			Fee:      -2,
		})
		if err == nil {
			t.Fatal("Expected a validation error")
		}

		var vErr *Error
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected *validation.Error, got %T", err)
		}

		for _, field := range []string{"userId", "symbol", "side", "quantity", "fee"} {
			if _, ok := vErr.Fields[field]; !ok {
				t.Errorf("Expected an error for field %q, got %v", field, vErr.Fields)
			}
		}
	})

	t.Run("rejects lowercase side", func(t *testing.T) {
		req := valid()
		req.Side = "buy"
		err := ValidateCreateTransaction(req)
		if err == nil || !strings.Contains(err.Error(), "side") {
			t.Errorf("Expected a side error, got %v", err)
		}
	})

	t.Run("rejects malformed timestamp", func(t *testing.T) {
		req := valid()
		req.Timestamp = "01/03/2024"
		err := ValidateCreateTransaction(req)
		if err == nil || !strings.Contains(err.Error(), "timestamp") {
			t.Errorf("Expected a timestamp error, got %v", err)
		}
	})
}

func TestValidateBulkImport(t *testing.T) {
	t.Run("accepts a valid import", func(t *testing.T) {
		err := ValidateBulkImport(request.BulkImportRequest{
			UserID: "user-1",
			Rows: []request.BulkTransactionRow{
				{Symbol: "BTC", Quantity: 1, Side: "BUY"},
				{Symbol: "ETH", Quantity: 2, Side: "SELL", Timestamp: "2024-03-01T10:00:00Z"},
			},
		})
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})

	t.Run("rejects an empty row list", func(t *testing.T) {
		err := ValidateBulkImport(request.BulkImportRequest{UserID: "user-1"})
		if err == nil || !strings.Contains(err.Error(), "rows") {
			t.Errorf("Expected a rows error, got %v", err)
		}
	})

	t.Run("keys row errors by index", func(t *testing.T) {
		err := ValidateBulkImport(request.BulkImportRequest{
			UserID: "user-1",
			Rows: []request.BulkTransactionRow{
				{Symbol: "BTC", Quantity: 1, Side: "BUY"},
				{Symbol: "ETH", Quantity: 0, Side: "HOLD"},
			},
		})
		if err == nil {
			t.Fatal("Expected a validation error")
		}

		var vErr *Error
		if !errors.As(err, &vErr) {
			t.Fatalf("Expected *validation.Error, got %T", err)
		}
		if _, ok := vErr.Fields["rows[1].quantity"]; !ok {
			t.Errorf("Expected rows[1].quantity error, got %v", vErr.Fields)
		}
		if _, ok := vErr.Fields["rows[1].side"]; !ok {
			t.Errorf("Expected rows[1].side error, got %v", vErr.Fields)
		}
		if _, ok := vErr.Fields["rows[0].symbol"]; ok {
			t.Error("Did not expect an error for the valid row")
		}
	})
}

func TestErrorRendering(t *testing.T) {
	err := &Error{Fields: map[string]string{
		"symbol": "symbol is required",
		"side":   "side is required",
	}}

	// Stable alphabetical order regardless of map iteration.
	want := "side: side is required; symbol: symbol is required"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}
