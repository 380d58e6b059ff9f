package engine

import (
	"testing"

	"github.com/imran22855/BitTrade-Pro/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridStrategy() *models.Strategy {
	return &models.Strategy{
		ID:                "grid-1",
		UserID:            "user-1",
		Type:              models.StrategyGridTrading,
		IsActive:          true,
		TradeSizePercent:  25,
		GridInterval:      2000,
		GridProfitPercent: 5.0,
	}
}

func freshPortfolio(usd, btc float64) *models.Portfolio {
	return &models.Portfolio{UserID: "user-1", USDBalance: usd, BTCBalance: btc}
}

func TestGridAnchorsExactlyOnce(t *testing.T) {
	strat := gridStrategy()
	pf := freshPortfolio(100000, 0)

	res := Evaluate(strat, 70000, pf)
	require.NotNil(t, res.State)
	require.NotNil(t, res.State.Grid)
	assert.True(t, res.StateChanged)
	assert.Empty(t, res.Fills, "anchoring tick must not trade")
	assert.Equal(t, 70000.0, res.State.Grid.InitialPrice)

	// Second tick at the same price keeps the anchor and stays idle.
	strat.State = res.State
	res2 := Evaluate(strat, 70000, pf)
	require.NotNil(t, res2.State.Grid)
	assert.Equal(t, 70000.0, res2.State.Grid.InitialPrice)
	assert.False(t, res2.StateChanged)
	assert.Empty(t, res2.Fills)
}

func TestGridBuysCrossedLevelOnce(t *testing.T) {
	strat := gridStrategy()
	pf := freshPortfolio(100000, 0)

	res := Evaluate(strat, 70000, pf)
	strat.State = res.State

	// Price crosses the first $2000 level. One buy, paired with a +5% sell.
	res = Evaluate(strat, 67999.5, pf)
	require.Len(t, res.Fills, 1)
	assert.Equal(t, models.Buy, res.Fills[0].Side)
	assert.InDelta(t, 25000.0, res.Fills[0].Total, 1e-9)
	require.Len(t, res.State.Grid.GridOrders, 1)
	order := res.State.Grid.GridOrders[0]
	assert.Equal(t, 67999.5, order.BuyPrice)
	assert.InDelta(t, 67999.5*1.05, order.SellPrice, 1e-6)
	assert.False(t, order.Filled)

	// Hovering around the same level must not buy again.
	strat.State = res.State
	pf2 := res.Portfolio
	for _, price := range []float64{67999.2, 67999.8, 67999.5} {
		next := Evaluate(strat, price, &pf2)
		assert.Empty(t, next.Fills, "no double-buy at price %v", price)
		assert.Len(t, next.State.Grid.GridOrders, 1)
		strat.State = next.State
		pf2 = next.Portfolio
	}
}

func TestGridNoBuyAboveAnchor(t *testing.T) {
	strat := gridStrategy()
	pf := freshPortfolio(100000, 0)

	res := Evaluate(strat, 70000, pf)
	strat.State = res.State

	// A drop smaller than one interval crosses no level.
	res = Evaluate(strat, 68500, pf)
	assert.Empty(t, res.Fills)
	assert.Empty(t, res.State.Grid.GridOrders)

	res = Evaluate(strat, 71000, pf)
	assert.Empty(t, res.Fills)
}

func TestGridSellFiresOnlyAtTarget(t *testing.T) {
	strat := gridStrategy()
	strat.State = &models.StrategyState{Grid: &models.GridState{
		InitialPrice: 70000,
		GridOrders: []models.GridOrder{
			{BuyPrice: 68000, SellPrice: 71400, BTCAmount: 0.5},
		},
	}}
	pf := freshPortfolio(1000, 1)

	res := Evaluate(strat, 71399.99, pf)
	assert.Empty(t, res.Fills)
	assert.False(t, res.State.Grid.GridOrders[0].Filled)

	res = Evaluate(strat, 71400.00, pf)
	require.Len(t, res.Fills, 1)
	assert.Equal(t, models.Sell, res.Fills[0].Side)
	assert.InDelta(t, 0.5*71400, res.Fills[0].Total, 1e-9)
	assert.True(t, res.State.Grid.GridOrders[0].Filled)
	assert.InDelta(t, 1000+0.5*71400, res.Portfolio.USDBalance, 1e-9)
	assert.InDelta(t, 0.5, res.Portfolio.BTCBalance, 1e-12)
}

func TestGridSellSkippedWithoutHoldings(t *testing.T) {
	strat := gridStrategy()
	strat.State = &models.StrategyState{Grid: &models.GridState{
		InitialPrice: 70000,
		GridOrders: []models.GridOrder{
			{BuyPrice: 68000, SellPrice: 71400, BTCAmount: 0.5},
		},
	}}
	pf := freshPortfolio(1000, 0.1) // less than the order amount

	res := Evaluate(strat, 72000, pf)
	assert.Empty(t, res.Fills)
	assert.False(t, res.State.Grid.GridOrders[0].Filled)
}

func TestGridBuySkippedAtMinimumBalance(t *testing.T) {
	strat := gridStrategy()
	res := Evaluate(strat, 70000, freshPortfolio(100, 0))
	strat.State = res.State

	res = Evaluate(strat, 67999.5, freshPortfolio(100, 0))
	assert.Empty(t, res.Fills, "buys require usd balance above the floor")
}

func TestGridInvalidIntervalIsInert(t *testing.T) {
	strat := gridStrategy()
	strat.GridInterval = 0
	res := Evaluate(strat, 70000, freshPortfolio(100000, 0))
	strat.State = res.State // anchored regardless

	res = Evaluate(strat, 60000, freshPortfolio(100000, 0))
	assert.Empty(t, res.Fills)
	assert.False(t, res.StateChanged)
}

func TestGridMultipleSellsOneTick(t *testing.T) {
	strat := gridStrategy()
	strat.State = &models.StrategyState{Grid: &models.GridState{
		InitialPrice: 70000,
		GridOrders: []models.GridOrder{
			{BuyPrice: 68000, SellPrice: 70000, BTCAmount: 0.2},
			{BuyPrice: 66000, SellPrice: 69000, BTCAmount: 0.3},
		},
	}}
	pf := freshPortfolio(1000, 1)

	res := Evaluate(strat, 70500, pf)
	require.Len(t, res.Fills, 2)
	for _, fill := range res.Fills {
		assert.Equal(t, models.Sell, fill.Side)
		assert.InDelta(t, fill.Amount*fill.Price, fill.Total, 1e-9)
	}
	assert.True(t, res.State.Grid.GridOrders[0].Filled)
	assert.True(t, res.State.Grid.GridOrders[1].Filled)
}

func TestGridBalancesNeverNegative(t *testing.T) {
	strat := gridStrategy()
	strat.TradeSizePercent = 100
	pf := *freshPortfolio(500, 0)

	prices := []float64{70000, 67999.5, 65999.5, 70000, 75000, 63999.5, 80000}
	for _, price := range prices {
		res := Evaluate(strat, price, &pf)
		strat.State = res.State
		pf = res.Portfolio
		assert.GreaterOrEqual(t, pf.USDBalance, 0.0, "usd at price %v", price)
		assert.GreaterOrEqual(t, pf.BTCBalance, 0.0, "btc at price %v", price)
	}
}

func TestGridFillAndBalanceConsistency(t *testing.T) {
	strat := gridStrategy()
	pf := freshPortfolio(100000, 0)

	res := Evaluate(strat, 70000, pf)
	strat.State = res.State

	res = Evaluate(strat, 67999.5, pf)
	require.Len(t, res.Fills, 1)
	fill := res.Fills[0]
	assert.InDelta(t, fill.Amount*fill.Price, fill.Total, 1e-6)
	assert.InDelta(t, pf.USDBalance-fill.Total, res.Portfolio.USDBalance, 1e-9)
	assert.InDelta(t, pf.BTCBalance+fill.Amount, res.Portfolio.BTCBalance, 1e-12)
}

func TestGridDoesNotMutateInput(t *testing.T) {
	strat := gridStrategy()
	strat.State = &models.StrategyState{Grid: &models.GridState{
		InitialPrice: 70000,
		GridOrders: []models.GridOrder{
			{BuyPrice: 68000, SellPrice: 69000, BTCAmount: 0.5},
		},
	}}
	pf := freshPortfolio(1000, 1)

	res := Evaluate(strat, 69500, pf)
	require.Len(t, res.Fills, 1)
	assert.False(t, strat.State.Grid.GridOrders[0].Filled, "input state must stay untouched")
	assert.Equal(t, 1000.0, pf.USDBalance)
}
