package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cryptofolio/backend/internal/api/request"
	"github.com/cryptofolio/backend/internal/api/response"
	"github.com/cryptofolio/backend/internal/apperrors"
	"github.com/cryptofolio/backend/internal/service"
	"github.com/cryptofolio/backend/internal/validation"
)

// TransactionHandler handles HTTP requests for transaction endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// List handles GET requests to retrieve all transactions for a user,
// sorted chronologically.
//
// Endpoint: GET /api/transactions?userId=
// Response: 200 OK with array of Transaction
// Error: 400 Bad Request if userId is missing
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		response.RespondError(w, http.StatusBadRequest, apperrors.ErrMissingUserID.Error(), nil)
		return
	}

	transactions, err := h.transactionService.ListByUser(userID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// Get handles GET requests to retrieve a single transaction by ID.
//
// Endpoint: GET /api/transactions/{id}
// Response: 200 OK with Transaction
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "id")

	transaction, err := h.transactionService.Get(transactionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransaction.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// Create handles POST requests to record a new transaction. On success the
// backfill reconciler is scheduled in the background; the response never
// waits for it.
//
// Endpoint: POST /api/transactions
// Request Body: CreateTransactionRequest (userId, symbol, quantity, side, price?, timestamp?, note?)
// Response: 201 Created with Transaction
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if creation fails
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transaction, err := h.transactionService.Create(r.Context(), req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCreateTransaction.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// BulkImport handles POST requests to import a batch of transactions.
// Rows carrying an already-seen dedupe key update in place rather than
// duplicating, so re-importing a file is safe.
//
// Endpoint: POST /api/transactions/bulk
// Request Body: BulkImportRequest (userId, rows[])
// Response: 200 OK with {"imported": N}
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if the import fails
func (h *TransactionHandler) BulkImport(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.BulkImportRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateBulkImport(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	imported, err := h.transactionService.BulkImport(r.Context(), req)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToImportTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]int{"imported": imported})
}
