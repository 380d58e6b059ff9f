// Package reporter renders a plain-text session report of a portfolio and
// its recent transactions.
package reporter

import (
	"fmt"
	"strings"
	"time"

	"github.com/imran22855/BitTrade-Pro/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Render builds the report. price is the latest known BTC price and is used
// to value the BTC position; pass 0 when no reading is available.
func Render(pf *models.Portfolio, txns []*models.Transaction, price float64) string {
	var b strings.Builder

	equity := pf.USDBalance + pf.BTCBalance*price
	fmt.Fprintf(&b, "Portfolio %s\n", pf.UserID)
	fmt.Fprintf(&b, "  USD balance: %.2f\n", pf.USDBalance)
	fmt.Fprintf(&b, "  BTC balance: %.8f\n", pf.BTCBalance)
	if price > 0 {
		fmt.Fprintf(&b, "  BTC price:   %.2f\n", price)
		fmt.Fprintf(&b, "  Equity:      %.2f\n", equity)
	}

	var buys, sells int
	var volume float64
	for _, t := range txns {
		if t.Side == models.Buy {
			buys++
		} else {
			sells++
		}
		volume += t.Total
	}
	fmt.Fprintf(&b, "  Trades:      %d (%d buys, %d sells), %.2f USD volume\n\n", len(txns), buys, sells, volume)

	if len(txns) == 0 {
		b.WriteString("No transactions yet.\n")
		return b.String()
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Time", "Side", "Amount (BTC)", "Price (USD)", "Total (USD)", "Strategy"})
	for _, txn := range txns {
		t.AppendRow(table.Row{
			txn.Timestamp.Format(time.DateTime),
			strings.ToUpper(string(txn.Side)),
			fmt.Sprintf("%.8f", txn.Amount),
			fmt.Sprintf("%.2f", txn.Price),
			fmt.Sprintf("%.2f", txn.Total),
			txn.StrategyID,
		})
	}
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}
