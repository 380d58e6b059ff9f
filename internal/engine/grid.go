package engine

import (
	"math"

	"github.com/imran22855/BitTrade-Pro/internal/logger"
	"github.com/imran22855/BitTrade-Pro/internal/models"
)

// evaluateGrid runs the single-side grid: the first tick anchors the grid at
// the current price, later ticks buy each freshly crossed level below the
// anchor and pair every buy with a profit-taking sell target.
func evaluateGrid(strat *models.Strategy, price float64, pf *models.Portfolio) *Result {
	res := &Result{Portfolio: *pf}

	// Lazy one-time anchor. The anchoring tick never trades.
	if strat.State == nil || strat.State.Grid == nil || strat.State.Grid.InitialPrice == 0 {
		res.State = &models.StrategyState{Grid: &models.GridState{
			InitialPrice: price,
			GridOrders:   []models.GridOrder{},
		}}
		res.StateChanged = true
		logger.S().Infow("grid trading initialized", "strategy", strat.ID, "anchor", price)
		return res
	}

	grid := cloneGridState(strat.State.Grid)
	res.State = &models.StrategyState{Grid: grid}

	if strat.GridInterval <= 0 {
		logger.S().Warnw("grid trading: invalid grid interval, skipping tick",
			"strategy", strat.ID, "interval", strat.GridInterval)
		return res
	}

	tradeSize := strat.TradeSizePercent / 100

	// How many whole intervals the price has dropped below the anchor.
	priceDrop := grid.InitialPrice - price
	gridLevel := int(math.Floor(priceDrop / strat.GridInterval))

	// At most one new buy per tick, at the deepest crossed level.
	if gridLevel > 0 {
		targetBuyPrice := grid.InitialPrice - float64(gridLevel)*strat.GridInterval

		haveOrder := false
		for _, order := range grid.GridOrders {
			if math.Abs(order.BuyPrice-targetBuyPrice) < buyDedupWindow {
				haveOrder = true
				break
			}
		}

		if !haveOrder && price <= targetBuyPrice && res.Portfolio.USDBalance > minUSDForTrade {
			usdToSpend := res.Portfolio.USDBalance * tradeSize
			btcAmount := usdToSpend / price
			sellPrice := price * (1 + strat.GridProfitPercent/100)

			grid.GridOrders = append(grid.GridOrders, models.GridOrder{
				BuyPrice:  price,
				SellPrice: sellPrice,
				BTCAmount: btcAmount,
			})
			res.applyBuy(btcAmount, price, usdToSpend)
			res.StateChanged = true

			logger.S().Infow("grid trading buy",
				"strategy", strat.ID, "amount", btcAmount, "price", price,
				"level", gridLevel, "pairedSell", sellPrice)
		}
	}

	// Fill every matured sell order, in insertion order.
	for i := range grid.GridOrders {
		order := &grid.GridOrders[i]
		if order.Filled || price < order.SellPrice || res.Portfolio.BTCBalance < order.BTCAmount {
			continue
		}

		usdReceived := order.BTCAmount * price
		order.Filled = true
		res.applySell(order.BTCAmount, price, usdReceived)
		res.StateChanged = true

		logger.S().Infow("grid trading sell",
			"strategy", strat.ID, "amount", order.BTCAmount, "price", price,
			"profit", usdReceived-order.BTCAmount*order.BuyPrice)
	}

	return res
}
