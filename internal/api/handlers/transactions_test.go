package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cryptofolio/backend/internal/model"
	"github.com/cryptofolio/backend/internal/repository"
	"github.com/cryptofolio/backend/internal/service"
	"github.com/cryptofolio/backend/internal/testutil"
	"github.com/cryptofolio/backend/internal/worker"
)

func newTransactionHandler(t *testing.T) (*TransactionHandler, *sql.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	transactionRepo := repository.NewTransactionRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	source := &testutil.FakePriceSource{}

	reconciler := service.NewReconcilerService(
		repository.NewPriceRepository(db),
		repository.NewSnapshotRepository(db),
		assetRepo,
		transactionRepo,
		service.NewPortfolioService(transactionRepo, assetRepo, source),
		source,
		worker.NewQueue(16),
		worker.NewKeyedMutex(),
	)
	return NewTransactionHandler(service.NewTransactionService(transactionRepo, reconciler)), db
}

func TestTransactionHandler_Create(t *testing.T) {
	t.Run("creates a transaction", func(t *testing.T) {
		handler, db := newTransactionHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/transactions", map[string]any{
			"userId":    "user-1",
			"symbol":    "BTC",
			"quantity":  0.5,
			"price":     40000.0,
			"side":      "BUY",
			"timestamp": "2024-03-01",
		})
		w := httptest.NewRecorder()
		handler.Create(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}

		var created model.Transaction
		testutil.DecodeJSONResponse(t, w, &created)
		if created.ID == "" {
			t.Error("Expected a generated id")
		}
		if created.Symbol != "BTC" {
			t.Errorf("Expected BTC, got %q", created.Symbol)
		}
		if count := testutil.CountRows(t, db, "ledger_transaction", ""); count != 1 {
			t.Errorf("Expected 1 stored row, got %d", count)
		}
	})

	t.Run("validation failure returns 400 with field details", func(t *testing.T) {
		handler, _ := newTransactionHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/transactions", map[string]any{
			"userId":   "user-1",
			"symbol":   "BTC",
			"quantity": -1,
			"side":     "BUY",
		})
		w := httptest.NewRecorder()
		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "quantity") {
			t.Errorf("Expected quantity in error details, got %s", w.Body.String())
		}
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		handler, _ := newTransactionHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/transactions", map[string]any{
			"userId":   "user-1",
			"symbol":   "BTC",
			"quantity": 1,
			"side":     "BUY",
			"amount":   500,
		})
		w := httptest.NewRecorder()
		handler.Create(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestTransactionHandler_BulkImport(t *testing.T) {
	t.Run("imports rows and reports the count", func(t *testing.T) {
		handler, db := newTransactionHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/transactions/bulk", map[string]any{
			"userId": "user-1",
			"rows": []map[string]any{
				{"symbol": "BTC", "quantity": 1, "price": 40000.0, "side": "BUY", "timestamp": "2024-03-01"},
				{"symbol": "ETH", "quantity": 2, "price": 2500.0, "side": "BUY", "timestamp": "2024-03-02"},
			},
		})
		w := httptest.NewRecorder()
		handler.BulkImport(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var result map[string]int
		testutil.DecodeJSONResponse(t, w, &result)
		if result["imported"] != 2 {
			t.Errorf("Expected 2 imported, got %d", result["imported"])
		}
		if count := testutil.CountRows(t, db, "ledger_transaction", ""); count != 2 {
			t.Errorf("Expected 2 stored rows, got %d", count)
		}
	})

	t.Run("bad row returns 400 with its index", func(t *testing.T) {
		handler, _ := newTransactionHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/transactions/bulk", map[string]any{
			"userId": "user-1",
			"rows": []map[string]any{
				{"symbol": "BTC", "quantity": 1, "side": "BUY"},
				{"symbol": "", "quantity": 1, "side": "BUY"},
			},
		})
		w := httptest.NewRecorder()
		handler.BulkImport(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "rows[1]") {
			t.Errorf("Expected row index in error details, got %s", w.Body.String())
		}
	})
}

func TestTransactionHandler_List(t *testing.T) {
	t.Run("missing userId returns 400", func(t *testing.T) {
		handler, _ := newTransactionHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
		w := httptest.NewRecorder()
		handler.List(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("lists the user's transactions", func(t *testing.T) {
		handler, db := newTransactionHandler(t)
		testutil.NewTransaction("user-1").OnDay("2024-03-02").Build(t, db)
		testutil.NewTransaction("user-1").OnDay("2024-03-01").Build(t, db)
		testutil.NewTransaction("user-2").Build(t, db)

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/transactions", map[string]string{
			"userId": "user-1",
		})
		w := httptest.NewRecorder()
		handler.List(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var transactions []model.Transaction
		testutil.DecodeJSONResponse(t, w, &transactions)
		if len(transactions) != 2 {
			t.Errorf("Expected 2 transactions, got %d", len(transactions))
		}
	})
}

func TestTransactionHandler_Get(t *testing.T) {
	t.Run("returns the transaction", func(t *testing.T) {
		handler, db := newTransactionHandler(t)
		stored := testutil.NewTransaction("user-1").WithSymbol("SOL").Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/transactions/"+stored.ID, map[string]string{
			"id": stored.ID,
		})
		w := httptest.NewRecorder()
		handler.Get(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var got model.Transaction
		testutil.DecodeJSONResponse(t, w, &got)
		if got.Symbol != "SOL" {
			t.Errorf("Expected SOL, got %q", got.Symbol)
		}
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		handler, _ := newTransactionHandler(t)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/transactions/missing", map[string]string{
			"id": "missing",
		})
		w := httptest.NewRecorder()
		handler.Get(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}
