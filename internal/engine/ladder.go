package engine

import (
	"fmt"
	"time"

	"github.com/imran22855/BitTrade-Pro/internal/logger"
	"github.com/imran22855/BitTrade-Pro/internal/models"
)

// evaluateLadder runs the bidirectional grid: a static ladder of price levels
// between the configured bounds, with virtual buy orders resting at every
// level below the current price and sell orders at every level above it.
func evaluateLadder(strat *models.Strategy, price float64, pf *models.Portfolio) *Result {
	res := &Result{State: strat.State, Portfolio: *pf}

	// A malformed ladder must never trade. The strategy stays active but
	// inert until reconfigured.
	if strat.GridLowerBound <= 0 || strat.GridUpperBound <= 0 || strat.GridLowerBound >= strat.GridUpperBound {
		logger.S().Warnw("traditional grid: invalid bounds, skipping tick",
			"strategy", strat.ID, "lower", strat.GridLowerBound, "upper", strat.GridUpperBound)
		return res
	}
	if strat.GridInterval <= 0 {
		logger.S().Warnw("traditional grid: invalid grid interval, skipping tick",
			"strategy", strat.ID, "interval", strat.GridInterval)
		return res
	}

	// Build the ladder on the first tick. No trades until the next one.
	if strat.State == nil || strat.State.Ladder == nil || strat.State.Ladder.GridLevels == nil {
		levels := []models.GridLevel{}
		for p := strat.GridLowerBound; p <= strat.GridUpperBound; p += strat.GridInterval {
			levels = append(levels, models.GridLevel{Price: p})
		}
		res.State = &models.StrategyState{Ladder: &models.LadderState{
			GridLevels:   levels,
			ActiveOrders: []models.LadderOrder{},
		}}
		res.StateChanged = true
		logger.S().Infow("traditional grid initialized",
			"strategy", strat.ID, "levels", len(levels),
			"lower", strat.GridLowerBound, "upper", strat.GridUpperBound)
		return res
	}

	ladder := cloneLadderState(strat.State.Ladder)
	res.State = &models.StrategyState{Ladder: ladder}

	tradeSize := strat.TradeSizePercent / 100

	// The level whose price the current price sits on or above, but below
	// the next rung. A price exactly on a rung maps to that rung.
	currentLevel := -1
	for i := range ladder.GridLevels {
		if price >= ladder.GridLevels[i].Price &&
			(i == len(ladder.GridLevels)-1 || price < ladder.GridLevels[i+1].Price) {
			currentLevel = i
			break
		}
	}
	if currentLevel == -1 {
		logger.S().Debugw("traditional grid: price outside bounds, skipping tick",
			"strategy", strat.ID, "price", price)
		return res
	}

	// Arm buy orders at every level below the current price. Sizing uses the
	// tick-start balance snapshot for each level; fills re-check the running
	// balance, so an over-committed ladder skips fills instead of going
	// negative.
	if res.Portfolio.USDBalance > minUSDForTrade {
		for i := 0; i < currentLevel; i++ {
			if hasUnfilledOrder(ladder.ActiveOrders, models.Buy, i) {
				continue
			}
			level := &ladder.GridLevels[i]
			usdToSpend := res.Portfolio.USDBalance * tradeSize
			ladder.ActiveOrders = append(ladder.ActiveOrders, models.LadderOrder{
				ID:        orderID(models.Buy, i),
				Side:      models.Buy,
				Price:     level.Price,
				BTCAmount: usdToSpend / level.Price,
				GridLevel: i,
			})
			level.HasBuyOrder = true
			res.StateChanged = true
			logger.S().Infow("traditional grid: placed buy order",
				"strategy", strat.ID, "price", level.Price, "level", i)
		}
	}

	// Arm sell orders at every level above the current price.
	if res.Portfolio.BTCBalance > minBTCForTrade {
		for i := currentLevel + 1; i < len(ladder.GridLevels); i++ {
			if hasUnfilledOrder(ladder.ActiveOrders, models.Sell, i) {
				continue
			}
			level := &ladder.GridLevels[i]
			ladder.ActiveOrders = append(ladder.ActiveOrders, models.LadderOrder{
				ID:        orderID(models.Sell, i),
				Side:      models.Sell,
				Price:     level.Price,
				BTCAmount: res.Portfolio.BTCBalance * tradeSize,
				GridLevel: i,
			})
			level.HasSellOrder = true
			res.StateChanged = true
			logger.S().Infow("traditional grid: placed sell order",
				"strategy", strat.ID, "price", level.Price, "level", i)
		}
	}

	// Fill orders the price has crossed, in placement order.
	for i := range ladder.ActiveOrders {
		order := &ladder.ActiveOrders[i]
		if order.Filled {
			continue
		}

		switch order.Side {
		case models.Buy:
			usdToSpend := order.BTCAmount * order.Price
			if price <= order.Price && res.Portfolio.USDBalance >= usdToSpend {
				order.Filled = true
				res.applyBuy(order.BTCAmount, order.Price, usdToSpend)
				res.StateChanged = true
				logger.S().Infow("traditional grid: executed buy",
					"strategy", strat.ID, "amount", order.BTCAmount,
					"price", order.Price, "level", order.GridLevel)
			}
		case models.Sell:
			if price >= order.Price && res.Portfolio.BTCBalance >= order.BTCAmount {
				usdReceived := order.BTCAmount * order.Price
				order.Filled = true
				res.applySell(order.BTCAmount, order.Price, usdReceived)
				res.StateChanged = true
				logger.S().Infow("traditional grid: executed sell",
					"strategy", strat.ID, "amount", order.BTCAmount,
					"price", order.Price, "level", order.GridLevel)
			}
		}
	}

	return res
}

func hasUnfilledOrder(orders []models.LadderOrder, side models.Side, level int) bool {
	for _, order := range orders {
		if order.Side == side && order.GridLevel == level && !order.Filled {
			return true
		}
	}
	return false
}

func orderID(side models.Side, level int) string {
	return fmt.Sprintf("%s-%d-%d", side, level, time.Now().UnixMilli())
}
