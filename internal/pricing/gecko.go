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

// GeckoClient fetches prices from the CoinGecko API.
// Works unauthenticated at the public rate limit; a demo API key raises it.
type GeckoClient struct {
	httpClient *http.Client
	apiKey     string

	// BaseURL is overridable for tests.
	BaseURL string
}

// NewGeckoClient creates a new CoinGecko client. apiKey may be empty.
func NewGeckoClient(apiKey string) *GeckoClient {
	return &GeckoClient{
		httpClient: newHTTPClient(),
		apiKey:     apiKey,
		BaseURL:    "https://api.coingecko.com/api/v3",
	}
}

// Name identifies the provider.
func (c *GeckoClient) Name() string { return "coingecko" }

// GetCurrentPrices fetches current USD prices for all ids in one request
// against the simple/price endpoint.
func (c *GeckoClient) GetCurrentPrices(ctx context.Context, ids []string) (map[string]float64, error) {
	if len(ids) == 0 {
		return map[string]float64{}, nil
	}

	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.BaseURL, strings.Join(ids, ","))

	data, err := c.query(ctx, url)
	if err != nil {
		return nil, err
	}

	var response map[string]struct {
		USD float64 `json:"usd"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse coingecko response: %w", err)
	}

	prices := make(map[string]float64, len(response))
	for id, entry := range response {
		prices[id] = entry.USD
	}
	return prices, nil
}

// GetHistoricalPrice fetches the USD price of one asset on the given day
// via the coin history endpoint, which takes dd-mm-yyyy dates.
func (c *GeckoClient) GetHistoricalPrice(ctx context.Context, id string, date time.Time) (float64, error) {
	url := fmt.Sprintf("%s/coins/%s/history?date=%s&localization=false", c.BaseURL, id, date.Format("02-01-2006"))

	data, err := c.query(ctx, url)
	if err != nil {
		return 0, err
	}

	var response struct {
		MarketData *struct {
			CurrentPrice map[string]float64 `json:"current_price"`
		} `json:"market_data"`
	}
	if err := json.Unmarshal(data, &response); err != nil {
		return 0, fmt.Errorf("failed to parse coingecko response: %w", err)
	}

	if response.MarketData == nil {
		return 0, fmt.Errorf("no historical price for %s on %s", id, date.Format("2006-01-02"))
	}

	price, ok := response.MarketData.CurrentPrice["usd"]
	if !ok {
		return 0, fmt.Errorf("no USD price for %s on %s", id, date.Format("2006-01-02"))
	}
	return price, nil
}

func (c *GeckoClient) query(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coingecko returned status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
