package service

import (
	"context"
	"log"
	"time"

	"github.com/cryptofolio/backend/internal/model"
	"github.com/cryptofolio/backend/internal/repository"
	"github.com/cryptofolio/backend/internal/validation"
	"github.com/cryptofolio/backend/internal/worker"
)

// HistoryService reconstructs portfolio value per day over a requested
// window. It consults the snapshot cache first, falls back to replaying
// the ledger against stored historical prices, and persists replayed days
// back into the cache so the next read takes the fast path.
type HistoryService struct {
	transactionRepo *repository.TransactionRepository
	snapshotRepo    *repository.SnapshotRepository
	priceRepo       *repository.PriceRepository
	queue           *worker.Queue
	userLocks       *worker.KeyedMutex
}

// NewHistoryService creates a new HistoryService with the provided dependencies.
func NewHistoryService(
	transactionRepo *repository.TransactionRepository,
	snapshotRepo *repository.SnapshotRepository,
	priceRepo *repository.PriceRepository,
	queue *worker.Queue,
	userLocks *worker.KeyedMutex,
) *HistoryService {
	return &HistoryService{
		transactionRepo: transactionRepo,
		snapshotRepo:    snapshotRepo,
		priceRepo:       priceRepo,
		queue:           queue,
		userLocks:       userLocks,
	}
}

// computedDay is one replayed day pending persistence into the cache.
type computedDay struct {
	date      time.Time
	value     float64
	breakdown map[string]model.SnapshotPosition
}

// GetHistory returns the user's daily portfolio value over the window
// named by rng (7d, 30d or 1y, ending today).
//
// Resolution order:
//  1. Cached snapshots within the window, taken as ground truth.
//  2. Ledger replay priced from stored historical prices, with the
//     computed days written back to the cache fire-and-forget.
//  3. A flat zero series when the user has no transactions at all.
//
// A ledger read failure propagates. A snapshot or price store failure
// degrades: the response is a zero series with Degraded set, so clients
// can tell placeholder data from real data instead of receiving an error
// page or fabricated values.
func (s *HistoryService) GetHistory(ctx context.Context, userID, rng string) (model.PortfolioHistory, error) {
	days, err := validation.RangeDays(rng)
	if err != nil {
		return model.PortfolioHistory{}, err
	}

	end := today()
	start := end.AddDate(0, 0, -(days - 1))

	transactions, err := s.transactionRepo.GetByUser(userID)
	if err != nil {
		return model.PortfolioHistory{}, err
	}
	if len(transactions) == 0 {
		return finishHistory(zeroSeries(start, end), false), nil
	}

	snapshots, err := s.snapshotRepo.GetRange(userID, start, end)
	if err != nil {
		log.Printf("snapshot cache read failed for user %s: %v", userID, err)
		snapshots = nil
	}
	if len(snapshots) > 0 {
		points := make([]model.HistoryPoint, len(snapshots))
		for i, snap := range snapshots {
			points[i] = model.HistoryPoint{
				Date:  snap.Date.Format("2006-01-02"),
				Value: snap.TotalValue,
			}
		}
		return finishHistory(points, false), nil
	}

	points, computed, err := s.replayWindow(userID, transactions, start, end)
	if err != nil {
		log.Printf("history replay failed for user %s: %v", userID, err)
		return finishHistory(zeroSeries(start, end), true), nil
	}

	s.persistAsync(userID, computed)

	return finishHistory(points, false), nil
}

// replayWindow rebuilds the value series for [start, end] from the ledger
// and the historical_price store. Days missing a stored price for a held
// symbol fall back to that symbol's average cost as of the day.
func (s *HistoryService) replayWindow(
	userID string,
	transactions []model.Transaction,
	start, end time.Time,
) ([]model.HistoryPoint, []computedDay, error) {

	symbols := make(map[string]bool)
	for _, t := range transactions {
		symbols[t.Symbol] = true
	}

	pricesBySymbol := make(map[string]map[string]float64, len(symbols))
	for symbol := range symbols {
		byDate, err := s.priceRepo.GetRangeByDate(symbol, start, end)
		if err != nil {
			return nil, nil, err
		}
		pricesBySymbol[symbol] = byDate
	}

	var points []model.HistoryPoint
	var computed []computedDay

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		dateKey := day.Format("2006-01-02")
		held := heldPositions(ReplayPositionsAsOf(transactions, day))

		dayValue := 0.0
		breakdown := make(map[string]model.SnapshotPosition, len(held))
		for _, p := range held {
			price, ok := pricesBySymbol[p.Symbol][dateKey]
			if !ok || price <= 0 {
				price = p.AvgPrice
			}
			value := p.Quantity * price
			dayValue += value
			breakdown[p.Symbol] = model.SnapshotPosition{
				Quantity: p.Quantity,
				Value:    value,
				Price:    price,
			}
		}

		points = append(points, model.HistoryPoint{Date: dateKey, Value: dayValue})
		computed = append(computed, computedDay{date: day, value: dayValue, breakdown: breakdown})
	}

	return points, computed, nil
}

// persistAsync writes replayed days into the snapshot cache through the
// job queue. The history response never blocks on these writes; a full
// queue just means the next read replays again.
func (s *HistoryService) persistAsync(userID string, computed []computedDay) {
	if len(computed) == 0 {
		return
	}

	s.queue.Enqueue(worker.NewFuncJob("persist-history-snapshots", func(ctx context.Context) error {
		unlock := s.userLocks.Lock(userID)
		defer unlock()

		for _, day := range computed {
			if err := s.snapshotRepo.Upsert(userID, day.date, day.value, day.breakdown); err != nil {
				return err
			}
		}
		return nil
	}))
}

// finishHistory fills in daily changes and the window's total return.
func finishHistory(points []model.HistoryPoint, degraded bool) model.PortfolioHistory {
	for i := range points {
		if i == 0 {
			points[i].Change = 0
			continue
		}
		points[i].Change = points[i].Value - points[i-1].Value
	}

	history := model.PortfolioHistory{Points: points, Degraded: degraded}
	if len(points) > 0 {
		first := points[0].Value
		last := points[len(points)-1].Value
		history.TotalReturn = last - first
		if first != 0 {
			history.TotalReturnPercent = history.TotalReturn / first * 100
		}
	}
	return history
}

// zeroSeries builds one zero-valued point per day in [start, end].
func zeroSeries(start, end time.Time) []model.HistoryPoint {
	var points []model.HistoryPoint
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		points = append(points, model.HistoryPoint{Date: day.Format("2006-01-02")})
	}
	return points
}

// today returns the current calendar day at UTC midnight.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
