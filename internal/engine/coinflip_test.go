package engine

import (
	"testing"

	"github.com/imran22855/BitTrade-Pro/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coinFlipStrategy() *models.Strategy {
	return &models.Strategy{
		ID:               "flip-1",
		UserID:           "user-1",
		Type:             models.StrategyDefault,
		IsActive:         true,
		RiskTolerance:    100, // 50% trade probability
		TradeSizePercent: 25,
	}
}

// stubFlips pins the coin flips for one test. The first value drives the buy
// signal, the second the sell signal.
func stubFlips(t *testing.T, vals ...float64) {
	t.Helper()
	orig := randFloat
	i := 0
	randFloat = func() float64 {
		v := vals[i%len(vals)]
		i++
		return v
	}
	t.Cleanup(func() { randFloat = orig })
}

func TestCoinFlipBuy(t *testing.T) {
	stubFlips(t, 0.1, 0.9)
	res := Evaluate(coinFlipStrategy(), 70000, freshPortfolio(100000, 0))

	require.Len(t, res.Fills, 1)
	fill := res.Fills[0]
	assert.Equal(t, models.Buy, fill.Side)
	assert.InDelta(t, 25000.0, fill.Total, 1e-9)
	assert.InDelta(t, 25000.0/70000, fill.Amount, 1e-12)
	assert.InDelta(t, 75000.0, res.Portfolio.USDBalance, 1e-9)
	assert.Nil(t, res.State, "coin flip keeps no state")
}

func TestCoinFlipSell(t *testing.T) {
	stubFlips(t, 0.9, 0.1)
	res := Evaluate(coinFlipStrategy(), 70000, freshPortfolio(100000, 2))

	require.Len(t, res.Fills, 1)
	fill := res.Fills[0]
	assert.Equal(t, models.Sell, fill.Side)
	assert.InDelta(t, 0.5, fill.Amount, 1e-12)
	assert.InDelta(t, 0.5*70000, fill.Total, 1e-9)
}

func TestCoinFlipBuyWinsOverSell(t *testing.T) {
	stubFlips(t, 0.1, 0.1)
	res := Evaluate(coinFlipStrategy(), 70000, freshPortfolio(100000, 2))

	require.Len(t, res.Fills, 1)
	assert.Equal(t, models.Buy, res.Fills[0].Side)
}

func TestCoinFlipRespectsFloors(t *testing.T) {
	stubFlips(t, 0.1, 0.1)

	res := Evaluate(coinFlipStrategy(), 70000, freshPortfolio(100, 0.00005))
	assert.Empty(t, res.Fills, "both balances below their trade floors")
}

func TestCoinFlipZeroRiskNeverTrades(t *testing.T) {
	stubFlips(t, 0.0, 0.0)
	strat := coinFlipStrategy()
	strat.RiskTolerance = 0

	res := Evaluate(strat, 70000, freshPortfolio(100000, 2))
	assert.Empty(t, res.Fills)
}
