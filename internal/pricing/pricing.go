// Package pricing provides clients for fetching current and historical
// USD asset prices from upstream price APIs.
//
// Each upstream API gets its own Source implementation; the active one is
// selected by configuration at startup. Ids passed to a Source are
// provider-specific asset identifiers (e.g. "bitcoin"), not ticker
// symbols. Resolution from symbols happens in the repository layer.
package pricing

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// requestTimeout bounds every upstream price call. Price lookups are
// treated as recoverable, so a hung provider must fail fast rather than
// stall a valuation.
const requestTimeout = 5 * time.Second

// Source defines the interface for an upstream price API.
// This interface enables dependency injection and testing with mock implementations.
type Source interface {
	// Name identifies the provider, used as the source tag on stored prices.
	Name() string

	// GetCurrentPrices returns the current USD price for each asset id in
	// one batched call. Ids the provider does not know are absent from the
	// result rather than an error.
	GetCurrentPrices(ctx context.Context, ids []string) (map[string]float64, error)

	// GetHistoricalPrice returns the USD price of one asset on the given
	// calendar day.
	GetHistoricalPrice(ctx context.Context, id string, date time.Time) (float64, error)
}

// New returns the Source implementation selected by the provider name.
// apiKey may be empty; both providers work unauthenticated at lower rate
// limits.
func New(provider, apiKey string) (Source, error) {
	switch provider {
	case "llama":
		return NewLlamaClient(), nil
	case "gecko":
		return NewGeckoClient(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown price provider: %s", provider)
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}
