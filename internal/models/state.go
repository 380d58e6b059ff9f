package models

// StrategyState is the engine-owned state persisted per strategy. It is a
// tagged union: exactly one variant is set, matching the strategy type. The
// ledger treats it as an opaque blob and must round-trip untouched fields
// unchanged.
type StrategyState struct {
	Grid   *GridState   `json:"grid,omitempty"`
	Ladder *LadderState `json:"ladder,omitempty"`
}

// GridState is the single-side grid variant: one anchor price plus the
// paired buy/sell orders placed below it.
type GridState struct {
	InitialPrice float64     `json:"initialPrice"`
	GridOrders   []GridOrder `json:"gridOrders"`
}

// GridOrder pairs an executed dip buy with its profit-taking sell target.
// Filled is monotonic: once true it never reverses.
type GridOrder struct {
	BuyPrice  float64 `json:"buyPrice"`
	SellPrice float64 `json:"sellPrice"`
	BTCAmount float64 `json:"btcAmount"`
	Filled    bool    `json:"filled"`
}

// LadderState is the bidirectional grid variant: a static price ladder
// between the configured bounds and the virtual resting orders on it.
type LadderState struct {
	GridLevels   []GridLevel   `json:"gridLevels"`
	ActiveOrders []LadderOrder `json:"activeOrders"`
}

// GridLevel is one rung of the ladder.
type GridLevel struct {
	Price        float64 `json:"price"`
	HasBuyOrder  bool    `json:"hasBuyOrder"`
	HasSellOrder bool    `json:"hasSellOrder"`
}

// LadderOrder is a virtual resting order pinned to a ladder rung.
type LadderOrder struct {
	ID        string  `json:"id"`
	Side      Side    `json:"type"`
	Price     float64 `json:"price"`
	BTCAmount float64 `json:"btcAmount"`
	GridLevel int     `json:"gridLevel"`
	Filled    bool    `json:"filled"`
}
