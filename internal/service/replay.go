package service

import (
	"time"

	"github.com/cryptofolio/backend/internal/model"
)

// positionAccumulator tracks the running state for one symbol during replay.
type positionAccumulator struct {
	quantity float64
	buyQty   float64
	buyCost  float64
}

// ReplayPositions folds a user's transactions into per-symbol positions.
//
// Quantity follows the side: BUY and TRANSFER add, SELL subtracts. Cost
// basis (average price) is computed from BUY legs only; transfers move
// coins without establishing a basis. The ledger upsert keyed on the
// dedupe key makes this idempotent: replaying the same transaction set
// twice yields the same positions.
//
// Positions with non-positive quantity are included in the result; callers
// that present holdings filter them out.
func ReplayPositions(transactions []model.Transaction) map[string]model.Position {
	accs := make(map[string]*positionAccumulator)

	for i := range transactions {
		t := &transactions[i]
		acc, ok := accs[t.Symbol]
		if !ok {
			acc = &positionAccumulator{}
			accs[t.Symbol] = acc
		}

		switch t.Side {
		case model.SideBuy:
			acc.quantity += t.Quantity
			acc.buyQty += t.Quantity
			acc.buyCost += t.Quantity * t.Price
		case model.SideSell:
			acc.quantity -= t.Quantity
		case model.SideTransfer:
			acc.quantity += t.Quantity
		}
	}

	positions := make(map[string]model.Position, len(accs))
	for symbol, acc := range accs {
		avgPrice := 0.0
		if acc.buyQty > 0 {
			avgPrice = acc.buyCost / acc.buyQty
		}
		positions[symbol] = model.Position{
			Symbol:   symbol,
			Quantity: acc.quantity,
			AvgPrice: avgPrice,
		}
	}
	return positions
}

// ReplayPositionsAsOf replays only the transactions whose timestamp falls
// on or before the end of the given calendar day. Used by the history
// reconstructor to rebuild holdings for past days.
func ReplayPositionsAsOf(transactions []model.Transaction, day time.Time) map[string]model.Position {
	cutoff := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	var asOf []model.Transaction
	for _, t := range transactions {
		if t.Timestamp.Before(cutoff) {
			asOf = append(asOf, t)
		}
	}
	return ReplayPositions(asOf)
}

// heldPositions filters replayed positions down to those with positive
// quantity, the ones that appear in a portfolio.
func heldPositions(positions map[string]model.Position) []model.Position {
	held := make([]model.Position, 0, len(positions))
	for _, p := range positions {
		if p.Quantity > 0 {
			held = append(held, p)
		}
	}
	return held
}
