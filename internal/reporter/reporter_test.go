package reporter

import (
	"testing"
	"time"

	"github.com/imran22855/BitTrade-Pro/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderEmpty(t *testing.T) {
	pf := &models.Portfolio{UserID: "demo", USDBalance: 100000}

	out := Render(pf, nil, 0)
	assert.Contains(t, out, "Portfolio demo")
	assert.Contains(t, out, "USD balance: 100000.00")
	assert.Contains(t, out, "No transactions yet")
	assert.NotContains(t, out, "Equity", "no equity line without a price")
}

func TestRenderWithTrades(t *testing.T) {
	pf := &models.Portfolio{UserID: "demo", USDBalance: 75000, BTCBalance: 0.5}
	txns := []*models.Transaction{
		{
			StrategyID: "grid-1",
			Side:       models.Buy,
			Amount:     0.5,
			Price:      68000,
			Total:      34000,
			Timestamp:  time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		},
	}

	out := Render(pf, txns, 70000)
	assert.Contains(t, out, "Equity:      110000.00")
	assert.Contains(t, out, "1 buys, 0 sells")
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "34000.00")
	assert.Contains(t, out, "grid-1")
}
