package engine

import (
	"math/rand"

	"github.com/imran22855/BitTrade-Pro/internal/logger"
	"github.com/imran22855/BitTrade-Pro/internal/models"
)

// randFloat is swapped out by tests to pin the coin flip.
var randFloat = rand.Float64

// evaluateCoinFlip is the placeholder fallback strategy: a random buy/sell
// signal scaled by the strategy's risk tolerance. It keeps no state and
// exists only to exercise the same evaluate contract as the grids.
func evaluateCoinFlip(strat *models.Strategy, price float64, pf *models.Portfolio) *Result {
	res := &Result{Portfolio: *pf}

	tradeSize := strat.TradeSizePercent / 100
	probability := float64(strat.RiskTolerance) / 200

	shouldBuy := randFloat() < probability
	shouldSell := randFloat() < probability

	if shouldBuy && res.Portfolio.USDBalance > minUSDForTrade {
		usdToSpend := res.Portfolio.USDBalance * tradeSize
		btcAmount := usdToSpend / price
		res.applyBuy(btcAmount, price, usdToSpend)
		logger.S().Infow("executed buy", "strategy", strat.ID, "amount", btcAmount, "price", price)
	} else if shouldSell && res.Portfolio.BTCBalance > minBTCForTrade {
		btcToSell := res.Portfolio.BTCBalance * tradeSize
		usdReceived := btcToSell * price
		res.applySell(btcToSell, price, usdReceived)
		logger.S().Infow("executed sell", "strategy", strat.ID, "amount", btcToSell, "price", price)
	}

	return res
}
