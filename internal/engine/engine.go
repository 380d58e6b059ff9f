// Package engine evaluates trading strategies against a simulated portfolio.
// Evaluation is side-effect free: it never touches the ledger, it only maps
// (strategy, price, balances) to (new state, fills, new balances) and leaves
// the commit to the caller.
package engine

import (
	"github.com/imran22855/BitTrade-Pro/internal/models"
)

const (
	// minUSDForTrade is the floor below which no buy is attempted.
	minUSDForTrade = 100.0
	// minBTCForTrade is the dust floor below which no sell is attempted.
	minBTCForTrade = 0.0001
	// buyDedupWindow is the tolerance for matching an existing grid order
	// against a target buy level, in USD.
	buyDedupWindow = 1.0
)

// Fill is one executed virtual trade.
type Fill struct {
	Side   models.Side
	Amount float64 // BTC
	Price  float64 // USD
	Total  float64 // USD, Amount * Price
}

// Result is the outcome of one evaluation tick.
type Result struct {
	// State is the post-tick strategy state. Nil when the strategy keeps none.
	State *models.StrategyState
	// StateChanged reports whether State differs from the input and needs
	// persisting.
	StateChanged bool
	// Fills lists the trades executed this tick, in execution order.
	Fills []Fill
	// Portfolio carries the balances after applying all fills.
	Portfolio models.Portfolio
}

// Evaluate runs one tick of the strategy selected by strat.Type. The inputs
// are never mutated; returned state is a fresh copy.
func Evaluate(strat *models.Strategy, price float64, pf *models.Portfolio) *Result {
	switch strat.Type {
	case models.StrategyGridTrading:
		return evaluateGrid(strat, price, pf)
	case models.StrategyTraditionalGrid:
		return evaluateLadder(strat, price, pf)
	default:
		return evaluateCoinFlip(strat, price, pf)
	}
}

func (r *Result) applyBuy(amount, price, total float64) {
	r.Fills = append(r.Fills, Fill{Side: models.Buy, Amount: amount, Price: price, Total: total})
	r.Portfolio.BTCBalance += amount
	r.Portfolio.USDBalance -= total
}

func (r *Result) applySell(amount, price, total float64) {
	r.Fills = append(r.Fills, Fill{Side: models.Sell, Amount: amount, Price: price, Total: total})
	r.Portfolio.BTCBalance -= amount
	r.Portfolio.USDBalance += total
}

func cloneGridState(st *models.GridState) *models.GridState {
	out := &models.GridState{
		InitialPrice: st.InitialPrice,
		GridOrders:   make([]models.GridOrder, len(st.GridOrders)),
	}
	copy(out.GridOrders, st.GridOrders)
	return out
}

func cloneLadderState(st *models.LadderState) *models.LadderState {
	out := &models.LadderState{
		GridLevels:   make([]models.GridLevel, len(st.GridLevels)),
		ActiveOrders: make([]models.LadderOrder, len(st.ActiveOrders)),
	}
	copy(out.GridLevels, st.GridLevels)
	copy(out.ActiveOrders, st.ActiveOrders)
	return out
}
