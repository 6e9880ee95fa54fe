package service

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/cryptofolio/backend/internal/model"
	"github.com/cryptofolio/backend/internal/pricing"
	"github.com/cryptofolio/backend/internal/repository"
)

// PortfolioService computes the live valuation of a user's holdings by
// replaying the full ledger and pricing every held asset at its current
// price. It never caches: "current" must reflect live prices, so callers
// that want persistence snapshot the result themselves.
type PortfolioService struct {
	transactionRepo *repository.TransactionRepository
	assetRepo       *repository.AssetRepository
	priceSource     pricing.Source
}

// NewPortfolioService creates a new PortfolioService with the provided dependencies.
func NewPortfolioService(
	transactionRepo *repository.TransactionRepository,
	assetRepo *repository.AssetRepository,
	priceSource pricing.Source,
) *PortfolioService {
	return &PortfolioService{
		transactionRepo: transactionRepo,
		assetRepo:       assetRepo,
		priceSource:     priceSource,
	}
}

// GetCurrentPortfolio replays the user's ledger into positions, prices the
// held assets with one batched call to the price source, and returns the
// valued portfolio sorted by descending value.
//
// Price-source failure is recoverable: affected assets are valued at their
// ledger-derived average cost instead, logged, and never dropped. An empty
// ledger yields an empty portfolio with zero totals, not an error. Only a
// ledger read failure propagates, since there is no safe fallback for not
// knowing what the user owns.
func (s *PortfolioService) GetCurrentPortfolio(ctx context.Context, userID string) (model.Portfolio, error) {
	transactions, err := s.transactionRepo.GetByUser(userID)
	if err != nil {
		return model.Portfolio{}, err
	}

	held := heldPositions(ReplayPositions(transactions))
	portfolio := model.Portfolio{
		Assets:      []model.PortfolioAsset{},
		LastUpdated: time.Now().UTC(),
	}
	if len(held) == 0 {
		return portfolio, nil
	}

	symbols := make([]string, len(held))
	for i, p := range held {
		symbols[i] = p.Symbol
	}

	providerIDs, err := s.assetRepo.ResolveProviderIDs(symbols)
	if err != nil {
		return model.Portfolio{}, err
	}

	ids := make([]string, 0, len(providerIDs))
	for _, id := range providerIDs {
		ids = append(ids, id)
	}

	livePrices, err := s.priceSource.GetCurrentPrices(ctx, ids)
	if err != nil {
		log.Printf("price source unavailable, valuing at average cost: %v", err)
		livePrices = map[string]float64{}
	}

	for _, p := range held {
		currentPrice, ok := livePrices[providerIDs[p.Symbol]]
		if !ok || currentPrice <= 0 {
			// No live price; a held asset is never silently dropped.
			currentPrice = p.AvgPrice
		}

		value := p.Quantity * currentPrice
		invested := p.Quantity * p.AvgPrice
		pnl := value - invested
		pnlPercent := 0.0
		if invested != 0 {
			pnlPercent = pnl / invested * 100
		}

		portfolio.Assets = append(portfolio.Assets, model.PortfolioAsset{
			Symbol:       p.Symbol,
			Quantity:     p.Quantity,
			AvgPrice:     p.AvgPrice,
			CurrentPrice: currentPrice,
			Value:        value,
			Invested:     invested,
			Pnl:          pnl,
			PnlPercent:   pnlPercent,
		})

		portfolio.TotalValue += value
		portfolio.TotalInvested += invested
	}

	portfolio.TotalPnl = portfolio.TotalValue - portfolio.TotalInvested
	if portfolio.TotalInvested != 0 {
		portfolio.TotalPnlPercent = portfolio.TotalPnl / portfolio.TotalInvested * 100
	}

	sort.Slice(portfolio.Assets, func(i, j int) bool {
		return portfolio.Assets[i].Value > portfolio.Assets[j].Value
	})

	return portfolio, nil
}

// SnapshotBreakdown converts a valued portfolio into the per-symbol
// breakdown stored on a daily snapshot.
func SnapshotBreakdown(portfolio model.Portfolio) map[string]model.SnapshotPosition {
	breakdown := make(map[string]model.SnapshotPosition, len(portfolio.Assets))
	for _, a := range portfolio.Assets {
		breakdown[a.Symbol] = model.SnapshotPosition{
			Quantity: a.Quantity,
			Value:    a.Value,
			Price:    a.CurrentPrice,
		}
	}
	return breakdown
}
