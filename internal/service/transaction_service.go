package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cryptofolio/backend/internal/api/request"
	"github.com/cryptofolio/backend/internal/model"
	"github.com/cryptofolio/backend/internal/repository"
)

// TransactionService handles ledger write and read operations. Every write
// goes through the dedupe-key upsert, and every successful write enqueues
// a backfill reconcile for the affected symbol.
type TransactionService struct {
	transactionRepo *repository.TransactionRepository
	reconciler      *ReconcilerService
}

// NewTransactionService creates a new TransactionService with the provided dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	reconciler *ReconcilerService,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		reconciler:      reconciler,
	}
}

// Create stores one transaction and fires the backfill reconciler for its
// symbol. Storage is an upsert on the dedupe key, so re-submitting the
// same transaction does not duplicate it.
func (s *TransactionService) Create(ctx context.Context, req request.CreateTransactionRequest) (*model.Transaction, error) {
	timestamp, err := parseTimestamp(req.Timestamp)
	if err != nil {
		return nil, err
	}

	transaction := &model.Transaction{
		ID:          uuid.New().String(),
		UserID:      req.UserID,
		Symbol:      strings.ToUpper(strings.TrimSpace(req.Symbol)),
		Quantity:    req.Quantity,
		Price:       req.Price,
		Side:        req.Side,
		Timestamp:   timestamp,
		Note:        req.Note,
		Fee:         req.Fee,
		FeeCurrency: req.FeeCurrency,
		Exchange:    req.Exchange,
		ExtRef:      req.ExtRef,
		DedupeKey:   req.DedupeKey,
		CreatedAt:   time.Now().UTC(),
	}
	if transaction.DedupeKey == "" {
		transaction.DedupeKey = DeriveDedupeKey(transaction)
	}

	if err := s.transactionRepo.Upsert(ctx, transaction); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	s.reconciler.EnqueueAfterInsert(transaction.UserID, transaction.Symbol, transaction.Timestamp)

	return transaction, nil
}

// BulkImport stores a batch of transactions in one database transaction
// and fires one backfill reconcile per distinct symbol, anchored at that
// symbol's earliest imported date. Returns the number of rows processed.
func (s *TransactionService) BulkImport(ctx context.Context, req request.BulkImportRequest) (int, error) {
	transactions := make([]model.Transaction, 0, len(req.Rows))
	earliestBySymbol := make(map[string]time.Time)

	for _, row := range req.Rows {
		timestamp, err := parseTimestamp(row.Timestamp)
		if err != nil {
			return 0, err
		}

		t := model.Transaction{
			ID:          uuid.New().String(),
			UserID:      req.UserID,
			Symbol:      strings.ToUpper(strings.TrimSpace(row.Symbol)),
			Quantity:    row.Quantity,
			Price:       row.Price,
			Side:        row.Side,
			Timestamp:   timestamp,
			Note:        row.Note,
			Fee:         row.Fee,
			FeeCurrency: row.FeeCurrency,
			Exchange:    row.Exchange,
			ExtRef:      row.ExtRef,
			DedupeKey:   row.DedupeKey,
		}
		if t.DedupeKey == "" {
			t.DedupeKey = DeriveDedupeKey(&t)
		}
		transactions = append(transactions, t)

		if earliest, ok := earliestBySymbol[t.Symbol]; !ok || timestamp.Before(earliest) {
			earliestBySymbol[t.Symbol] = timestamp
		}
	}

	if err := s.transactionRepo.BatchUpsert(ctx, transactions); err != nil {
		return 0, fmt.Errorf("failed to import transactions: %w", err)
	}

	for symbol, earliest := range earliestBySymbol {
		s.reconciler.EnqueueAfterInsert(req.UserID, symbol, earliest)
	}

	return len(transactions), nil
}

// ListByUser retrieves every transaction for the user in chronological order.
func (s *TransactionService) ListByUser(userID string) ([]model.Transaction, error) {
	return s.transactionRepo.GetByUser(userID)
}

// Get retrieves a single transaction by ID.
func (s *TransactionService) Get(id string) (model.Transaction, error) {
	return s.transactionRepo.Get(id)
}

// DeriveDedupeKey computes the deterministic identity token for a
// transaction that arrived without an explicit one: a SHA-256 over the
// content fields. Two submissions of the same fact hash identically and
// collapse to one stored row.
func DeriveDedupeKey(t *model.Transaction) string {
	parts := []string{
		t.UserID,
		t.Symbol,
		strconv.FormatFloat(t.Quantity, 'f', -1, 64),
		strconv.FormatFloat(t.Price, 'f', -1, 64),
		t.Side,
		t.Timestamp.UTC().Format(time.RFC3339),
		t.Note,
		strconv.FormatFloat(t.Fee, 'f', -1, 64),
		t.FeeCurrency,
		t.Exchange,
		t.ExtRef,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// parseTimestamp accepts RFC3339 or date-only timestamps; empty means now.
func parseTimestamp(str string) (time.Time, error) {
	if strings.TrimSpace(str) == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, str); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", str)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return t.UTC(), nil
}
