package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cryptofolio/backend/internal/model"
	"github.com/cryptofolio/backend/internal/pricing"
	"github.com/cryptofolio/backend/internal/repository"
	"github.com/cryptofolio/backend/internal/worker"
)

// historicalFetchLimit bounds concurrent per-day price fetches against the
// upstream provider in one reconcile run.
const historicalFetchLimit = 4

// ReconcilerService restores cache and price consistency after a ledger
// write. For each inserted transaction it backfills missing historical
// prices for the symbol between the transaction date and today, recomputes
// today's snapshot, and purges snapshots made stale by a retroactive
// insert.
//
// Every write it performs is an upsert, so re-running a reconcile for the
// same inputs converges to the same stored state.
type ReconcilerService struct {
	priceRepo        *repository.PriceRepository
	snapshotRepo     *repository.SnapshotRepository
	assetRepo        *repository.AssetRepository
	transactionRepo  *repository.TransactionRepository
	portfolioService *PortfolioService
	priceSource      pricing.Source
	queue            *worker.Queue
	userLocks        *worker.KeyedMutex
}

// NewReconcilerService creates a new ReconcilerService with the provided dependencies.
func NewReconcilerService(
	priceRepo *repository.PriceRepository,
	snapshotRepo *repository.SnapshotRepository,
	assetRepo *repository.AssetRepository,
	transactionRepo *repository.TransactionRepository,
	portfolioService *PortfolioService,
	priceSource pricing.Source,
	queue *worker.Queue,
	userLocks *worker.KeyedMutex,
) *ReconcilerService {
	return &ReconcilerService{
		priceRepo:        priceRepo,
		snapshotRepo:     snapshotRepo,
		assetRepo:        assetRepo,
		transactionRepo:  transactionRepo,
		portfolioService: portfolioService,
		priceSource:      priceSource,
		queue:            queue,
		userLocks:        userLocks,
	}
}

// EnqueueAfterInsert schedules a reconcile run for a freshly inserted
// transaction. The caller's HTTP request returns immediately; failures
// are logged at the job boundary and never surface to the user.
func (s *ReconcilerService) EnqueueAfterInsert(userID, symbol string, timestamp time.Time) {
	txDate := time.Date(timestamp.Year(), timestamp.Month(), timestamp.Day(), 0, 0, 0, 0, time.UTC)

	s.queue.Enqueue(worker.NewFuncJob("backfill-reconcile", func(ctx context.Context) error {
		return s.Reconcile(ctx, userID, symbol, txDate)
	}))
}

// Reconcile runs the full backfill sequence for one (user, symbol, day):
//
//  1. When txDate is before today, purge cached snapshots after txDate;
//     they were computed without this transaction and are stale.
//  2. Backfill missing historical prices for the symbol from txDate to
//     today. Days whose lookup fails are skipped, not fatal.
//  3. Recompute the live portfolio and upsert it as today's snapshot.
func (s *ReconcilerService) Reconcile(ctx context.Context, userID, symbol string, txDate time.Time) error {
	endDate := today()

	if txDate.Before(endDate) {
		if err := s.snapshotRepo.PurgeAfter(userID, txDate); err != nil {
			return fmt.Errorf("failed to purge stale snapshots: %w", err)
		}
	}

	if err := s.backfillPrices(ctx, symbol, txDate, endDate); err != nil {
		// Price backfill is best-effort; the snapshot recompute below
		// still runs so today's cache entry stays fresh.
		log.Printf("price backfill for %s incomplete: %v", symbol, err)
	}

	return s.RefreshSnapshot(ctx, userID)
}

// backfillPrices fills the historical_price gaps for symbol over
// [startDate, endDate], fanning the per-day provider lookups out through a
// bounded errgroup. Individual day failures are logged and skipped.
func (s *ReconcilerService) backfillPrices(ctx context.Context, symbol string, startDate, endDate time.Time) error {
	existing, err := s.priceRepo.GetRangeByDate(symbol, startDate, endDate)
	if err != nil {
		return err
	}

	var missing []time.Time
	for day := startDate; !day.After(endDate); day = day.AddDate(0, 0, 1) {
		if _, ok := existing[day.Format("2006-01-02")]; !ok {
			missing = append(missing, day)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	providerIDs, err := s.assetRepo.ResolveProviderIDs([]string{symbol})
	if err != nil {
		return err
	}
	providerID := providerIDs[symbol]

	var mu sync.Mutex
	fetched := make([]model.HistoricalPrice, 0, len(missing))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(historicalFetchLimit)

	for _, day := range missing {
		day := day
		g.Go(func() error {
			price, err := s.priceSource.GetHistoricalPrice(gctx, providerID, day)
			if err != nil {
				log.Printf("skipping %s price for %s: %v", symbol, day.Format("2006-01-02"), err)
				return nil
			}
			mu.Lock()
			fetched = append(fetched, model.HistoricalPrice{
				Symbol: symbol,
				Date:   day,
				Price:  price,
				Source: s.priceSource.Name(),
			})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return s.priceRepo.BatchUpsert(ctx, fetched)
}

// RefreshSnapshot recomputes the user's live portfolio and upserts it as
// today's snapshot. Writes for one user are serialized through the keyed
// mutex so concurrent reconcile runs cannot interleave.
func (s *ReconcilerService) RefreshSnapshot(ctx context.Context, userID string) error {
	unlock := s.userLocks.Lock(userID)
	defer unlock()

	portfolio, err := s.portfolioService.GetCurrentPortfolio(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to recompute portfolio: %w", err)
	}

	if err := s.snapshotRepo.Upsert(userID, today(), portfolio.TotalValue, SnapshotBreakdown(portfolio)); err != nil {
		return fmt.Errorf("failed to store today's snapshot: %w", err)
	}
	return nil
}

// RefreshAllSnapshots recomputes today's snapshot for every user with
// ledger activity. Wired to the nightly cron so the cache stays warm even
// for users who recorded no transactions that day.
func (s *ReconcilerService) RefreshAllSnapshots(ctx context.Context) error {
	userIDs, err := s.transactionRepo.ListUserIDs()
	if err != nil {
		return fmt.Errorf("failed to list users for refresh: %w", err)
	}

	for _, userID := range userIDs {
		if err := s.RefreshSnapshot(ctx, userID); err != nil {
			log.Printf("snapshot refresh for user %s failed: %v", userID, err)
		}
	}
	return nil
}

// EnqueueRefreshAll schedules the nightly full refresh on the job queue.
func (s *ReconcilerService) EnqueueRefreshAll() {
	s.queue.Enqueue(worker.NewFuncJob("refresh-all-snapshots", s.RefreshAllSnapshots))
}
