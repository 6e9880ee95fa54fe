package service

import (
	"math"
	"testing"
	"time"

	"github.com/cryptofolio/backend/internal/model"
)

func day(s string) time.Time {
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return parsed
}

func tx(symbol, side string, qty, price float64, ts string) model.Transaction {
	return model.Transaction{
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		Price:     price,
		Timestamp: day(ts).Add(12 * time.Hour),
	}
}

func TestReplayPositions(t *testing.T) {
	t.Run("quantity is sum of buys minus sells", func(t *testing.T) {
		positions := ReplayPositions([]model.Transaction{
			tx("BTC", model.SideBuy, 2, 30000, "2026-08-01"),
			tx("BTC", model.SideBuy, 1, 40000, "2026-08-02"),
			tx("BTC", model.SideSell, 0.5, 45000, "2026-08-03"),
		})

		p := positions["BTC"]
		if p.Quantity != 2.5 {
			t.Errorf("Expected quantity 2.5, got %v", p.Quantity)
		}
	})

	t.Run("average price uses buy legs only", func(t *testing.T) {
		positions := ReplayPositions([]model.Transaction{
			tx("ETH", model.SideBuy, 1, 2000, "2026-08-01"),
			tx("ETH", model.SideBuy, 1, 3000, "2026-08-02"),
			tx("ETH", model.SideSell, 1, 5000, "2026-08-03"),
		})

		p := positions["ETH"]
		if p.AvgPrice != 2500 {
			t.Errorf("Expected avg price 2500, got %v", p.AvgPrice)
		}
	})

	t.Run("transfers add quantity without affecting cost basis", func(t *testing.T) {
		positions := ReplayPositions([]model.Transaction{
			tx("BTC", model.SideBuy, 1, 40000, "2026-08-01"),
			tx("BTC", model.SideTransfer, 0.5, 0, "2026-08-02"),
		})

		p := positions["BTC"]
		if p.Quantity != 1.5 {
			t.Errorf("Expected quantity 1.5, got %v", p.Quantity)
		}
		if p.AvgPrice != 40000 {
			t.Errorf("Expected avg price 40000, got %v", p.AvgPrice)
		}
	})

	t.Run("replay is deterministic for a fixed transaction set", func(t *testing.T) {
		transactions := []model.Transaction{
			tx("BTC", model.SideBuy, 1.2, 40000, "2026-08-01"),
			tx("ETH", model.SideBuy, 3, 2000, "2026-08-01"),
			tx("BTC", model.SideSell, 0.2, 42000, "2026-08-02"),
		}

		first := ReplayPositions(transactions)
		second := ReplayPositions(transactions)

		for symbol, p := range first {
			if second[symbol] != p {
				t.Errorf("Replay differed for %s: %+v vs %+v", symbol, p, second[symbol])
			}
		}
	})

	t.Run("sequence netting to zero produces non-positive position", func(t *testing.T) {
		positions := ReplayPositions([]model.Transaction{
			tx("SOL", model.SideBuy, 10, 100, "2026-08-01"),
			tx("SOL", model.SideSell, 10, 120, "2026-08-02"),
		})

		held := heldPositions(positions)
		if len(held) != 0 {
			t.Errorf("Expected no held positions, got %v", held)
		}
	})

	t.Run("avg price is zero with no buys", func(t *testing.T) {
		positions := ReplayPositions([]model.Transaction{
			tx("DOT", model.SideTransfer, 5, 0, "2026-08-01"),
		})

		p := positions["DOT"]
		if p.AvgPrice != 0 {
			t.Errorf("Expected avg price 0, got %v", p.AvgPrice)
		}
		if p.Quantity != 5 {
			t.Errorf("Expected quantity 5, got %v", p.Quantity)
		}
	})
}

func TestReplayPositionsAsOf(t *testing.T) {
	transactions := []model.Transaction{
		tx("BTC", model.SideBuy, 1, 40000, "2026-08-01"),
		tx("BTC", model.SideBuy, 1, 44000, "2026-08-10"),
		tx("BTC", model.SideSell, 0.5, 46000, "2026-08-20"),
	}

	t.Run("includes only transactions on or before the day", func(t *testing.T) {
		positions := ReplayPositionsAsOf(transactions, day("2026-08-05"))
		if positions["BTC"].Quantity != 1 {
			t.Errorf("Expected quantity 1 as of Aug 5, got %v", positions["BTC"].Quantity)
		}

		positions = ReplayPositionsAsOf(transactions, day("2026-08-10"))
		if positions["BTC"].Quantity != 2 {
			t.Errorf("Expected quantity 2 as of Aug 10, got %v", positions["BTC"].Quantity)
		}

		positions = ReplayPositionsAsOf(transactions, day("2026-08-25"))
		if positions["BTC"].Quantity != 1.5 {
			t.Errorf("Expected quantity 1.5 as of Aug 25, got %v", positions["BTC"].Quantity)
		}
	})

	t.Run("day before first transaction yields no positions", func(t *testing.T) {
		positions := ReplayPositionsAsOf(transactions, day("2026-07-31"))
		if len(positions) != 0 {
			t.Errorf("Expected no positions, got %v", positions)
		}
	})

	t.Run("avg price reflects buys up to the day", func(t *testing.T) {
		positions := ReplayPositionsAsOf(transactions, day("2026-08-15"))
		if math.Abs(positions["BTC"].AvgPrice-42000) > 1e-9 {
			t.Errorf("Expected avg price 42000, got %v", positions["BTC"].AvgPrice)
		}
	})
}
