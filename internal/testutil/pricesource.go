package testutil

import (
	"context"
	"sync"
	"time"
)

// FakePriceSource is an in-memory pricing.Source implementation for tests.
// Prices are keyed by provider asset id; historical prices additionally by
// YYYY-MM-DD date string.
type FakePriceSource struct {
	mu sync.Mutex

	// Current maps asset id to its live price.
	Current map[string]float64
	// Historical maps asset id to date string to price.
	Historical map[string]map[string]float64
	// CurrentErr, when set, fails every GetCurrentPrices call.
	CurrentErr error
	// HistoricalErr, when set, fails every GetHistoricalPrice call.
	HistoricalErr error

	// CurrentCalls counts GetCurrentPrices invocations.
	CurrentCalls int
	// HistoricalCalls counts GetHistoricalPrice invocations.
	HistoricalCalls int
}

// Name identifies the fake provider.
func (f *FakePriceSource) Name() string { return "fake" }

// GetCurrentPrices returns the configured live prices for the known ids.
func (f *FakePriceSource) GetCurrentPrices(_ context.Context, ids []string) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CurrentCalls++

	if f.CurrentErr != nil {
		return nil, f.CurrentErr
	}

	prices := make(map[string]float64)
	for _, id := range ids {
		if price, ok := f.Current[id]; ok {
			prices[id] = price
		}
	}
	return prices, nil
}

// GetHistoricalPrice returns the configured price for id on the given day.
func (f *FakePriceSource) GetHistoricalPrice(_ context.Context, id string, date time.Time) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.HistoricalCalls++

	if f.HistoricalErr != nil {
		return 0, f.HistoricalErr
	}

	price, ok := f.Historical[id][date.Format("2006-01-02")]
	if !ok {
		return 0, errNoPrice
	}
	return price, nil
}

type noPriceError struct{}

func (noPriceError) Error() string { return "no price configured" }

var errNoPrice = noPriceError{}
