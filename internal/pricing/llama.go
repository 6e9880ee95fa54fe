package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// LlamaClient fetches prices from the DeFiLlama coins API.
// It wraps an HTTP client and provides convenient methods for querying
// current and historical USD prices.
//
// DeFiLlama addresses assets as "coingecko:<id>"; this client applies the
// prefix internally so callers work with bare provider ids.
type LlamaClient struct {
	httpClient *http.Client

	// BaseURL is overridable for tests.
	BaseURL string
}

// NewLlamaClient creates a new DeFiLlama client with default HTTP settings.
func NewLlamaClient() *LlamaClient {
	return &LlamaClient{
		httpClient: newHTTPClient(),
		BaseURL:    "https://coins.llama.fi",
	}
}

// Name identifies the provider.
func (c *LlamaClient) Name() string { return "defillama" }

// llamaResponse is the wire format of the coins API price endpoints.
type llamaResponse struct {
	Coins map[string]struct {
		Price     float64 `json:"price"`
		Symbol    string  `json:"symbol"`
		Timestamp int64   `json:"timestamp"`
	} `json:"coins"`
}

// GetCurrentPrices fetches current USD prices for all ids in one request.
// Ids unknown to DeFiLlama are simply absent from the returned map.
func (c *LlamaClient) GetCurrentPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}

	url := fmt.Sprintf("%s/prices/current/%s", c.BaseURL, c.joinIDs(ids))
	return c.queryPrices(ctx, url)
}

// GetHistoricalPrice fetches the USD price of one asset on the given day.
// The timestamp sent is UTC noon so the provider's nearest-price lookup
// lands inside the requested day.
func (c *LlamaClient) GetHistoricalPrice(ctx context.Context, id string, date time.Time) (float64, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 12, 0, 0, 0, time.UTC)
	url := fmt.Sprintf("%s/prices/historical/%d/%s", c.BaseURL, day.Unix(), c.joinIDs([]string{id}))

	prices, err := c.queryPrices(ctx, url)
	if err != nil {
		return 0, err
	}

	price, ok := prices[id]
	if !ok {
		return 0, fmt.Errorf("no historical price for %s on %s", id, date.Format("2006-01-02"))
	}
	return price, nil
}

// joinIDs builds the comma-separated, prefixed id list the coins API expects.
func (c *LlamaClient) joinIDs(ids []string) string {
	prefixed := make([]string, len(ids))
	for i, id := range ids {
		prefixed[i] = "coingecko:" + id
	}
	return strings.Join(prefixed, ",")
}

// queryPrices executes a coins API request and maps results back to bare ids.
func (c *LlamaClient) queryPrices(ctx context.Context, url string) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("defillama returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var response llamaResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse defillama response: %w", err)
	}

	prices := make(map[string]float64, len(response.Coins))
	for key, coin := range response.Coins {
		id := strings.TrimPrefix(key, "coingecko:")
		prices[id] = coin.Price
	}
	return prices, nil
}
