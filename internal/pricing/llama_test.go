package pricing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLlamaClient_GetCurrentPrices(t *testing.T) {
	t.Run("fetches all ids in one request", func(t *testing.T) {
		var requestedPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestedPath = r.URL.Path
			fmt.Fprint(w, `{
				"coins": {
					"coingecko:bitcoin": {"price": 52000.5, "symbol": "BTC"},
					"coingecko:ethereum": {"price": 3100, "symbol": "ETH"}
				}
			}`)
		}))
		defer server.Close()

		client := NewLlamaClient()
		client.BaseURL = server.URL

		prices, err := client.GetCurrentPrices(context.Background(), []string{"bitcoin", "ethereum"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if !strings.HasPrefix(requestedPath, "/prices/current/") {
			t.Errorf("Unexpected path: %s", requestedPath)
		}
		if !strings.Contains(requestedPath, "coingecko:bitcoin") || !strings.Contains(requestedPath, "coingecko:ethereum") {
			t.Errorf("Expected prefixed ids in path, got %s", requestedPath)
		}
		if prices["bitcoin"] != 52000.5 {
			t.Errorf("Expected bitcoin price 52000.5, got %v", prices["bitcoin"])
		}
		if prices["ethereum"] != 3100 {
			t.Errorf("Expected ethereum price 3100, got %v", prices["ethereum"])
		}
	})

	t.Run("unknown ids are absent from the result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"coins": {}}`)
		}))
		defer server.Close()

		client := NewLlamaClient()
		client.BaseURL = server.URL

		prices, err := client.GetCurrentPrices(context.Background(), []string{"nonexistent"})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(prices) != 0 {
			t.Errorf("Expected empty result, got %v", prices)
		}
	})

	t.Run("empty id list skips the request", func(t *testing.T) {
		client := NewLlamaClient()
		client.BaseURL = "http://127.0.0.1:0"

		prices, err := client.GetCurrentPrices(context.Background(), nil)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if len(prices) != 0 {
			t.Errorf("Expected empty result, got %v", prices)
		}
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewLlamaClient()
		client.BaseURL = server.URL

		_, err := client.GetCurrentPrices(context.Background(), []string{"bitcoin"})
		if err == nil {
			t.Fatal("Expected an error for status 429")
		}
		if !strings.Contains(err.Error(), "429") {
			t.Errorf("Expected status in error, got %v", err)
		}
	})
}

func TestLlamaClient_GetHistoricalPrice(t *testing.T) {
	t.Run("queries with a UTC noon timestamp", func(t *testing.T) {
		day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		wantUnix := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).Unix()

		var requestedPath string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestedPath = r.URL.Path
			fmt.Fprint(w, `{"coins": {"coingecko:bitcoin": {"price": 48000, "symbol": "BTC"}}}`)
		}))
		defer server.Close()

		client := NewLlamaClient()
		client.BaseURL = server.URL

		price, err := client.GetHistoricalPrice(context.Background(), "bitcoin", day)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		wantPath := fmt.Sprintf("/prices/historical/%d/coingecko:bitcoin", wantUnix)
		if requestedPath != wantPath {
			t.Errorf("Expected path %s, got %s", wantPath, requestedPath)
		}
		if price != 48000 {
			t.Errorf("Expected price 48000, got %v", price)
		}
	})

	t.Run("missing coin in response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"coins": {}}`)
		}))
		defer server.Close()

		client := NewLlamaClient()
		client.BaseURL = server.URL

		_, err := client.GetHistoricalPrice(context.Background(), "bitcoin", time.Now())
		if err == nil {
			t.Fatal("Expected an error when the coin is absent")
		}
	})
}
