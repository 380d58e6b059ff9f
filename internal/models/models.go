package models

import "time"

// Config holds the service configuration loaded from the JSON config file.
type Config struct {
	ListenAddr         string    `json:"listen_addr"`          // HTTP listen address, e.g. ":8080"
	DBPath             string    `json:"db_path"`              // BadgerDB directory
	Symbol             string    `json:"symbol"`               // traded pair, e.g. "BTCUSDT"
	TickIntervalSec    int       `json:"tick_interval_sec"`    // strategy evaluation period
	PriceRefreshSec    int       `json:"price_refresh_sec"`    // REST price refresh period
	WSBaseURL          string    `json:"ws_base_url"`          // market data websocket base, e.g. "wss://stream.binance.com:9443"
	DisablePriceStream bool      `json:"disable_price_stream"` // skip the websocket stream, REST polling only
	StartingUSDBalance float64   `json:"starting_usd_balance"` // paper money seeded into new portfolios
	LogConfig          LogConfig `json:"log"`
}

// LogConfig mirrors the zap/lumberjack setup.
type LogConfig struct {
	Level      string `json:"level"`       // "debug", "info", "warn", "error"
	Output     string `json:"output"`      // "console", "file", "both"
	File       string `json:"file"`        // log file path
	MaxSize    int    `json:"max_size"`    // MB per file
	MaxBackups int    `json:"max_backups"` // rotated files kept
	MaxAge     int    `json:"max_age"`     // days
	Compress   bool   `json:"compress"`
}

// Side is the direction of a fill.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// Strategy type strings. Anything else falls back to the coin-flip strategy.
const (
	StrategyGridTrading     = "grid-trading"     // single-side grid: buy dips, paired profit sells
	StrategyTraditionalGrid = "traditional-grid" // bidirectional grid between fixed bounds
	StrategyDefault         = "default"
)

// Strategy is a persisted trading strategy: immutable-per-activation
// configuration plus the engine-owned mutable state blob.
type Strategy struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsActive bool   `json:"isActive"`

	// RiskTolerance drives the coin-flip strategy's trade probability (0-100).
	RiskTolerance int `json:"riskTolerance"`
	// TradeSizePercent is the share of the relevant balance spent per trade (0-100).
	TradeSizePercent float64 `json:"tradeSize"`

	// Grid parameters. GridProfitPercent applies to grid-trading only;
	// the bounds apply to traditional-grid only.
	GridInterval      float64 `json:"gridInterval"`
	GridProfitPercent float64 `json:"gridProfitPercent"`
	GridLowerBound    float64 `json:"gridLowerBound"`
	GridUpperBound    float64 `json:"gridUpperBound"`

	// State is owned exclusively by the engine. Nil until the first tick
	// after activation.
	State *StrategyState `json:"strategyState,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// Portfolio is a user's simulated balances.
type Portfolio struct {
	UserID     string    `json:"userId"`
	BTCBalance float64   `json:"btcBalance"`
	USDBalance float64   `json:"usdBalance"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Transaction records a single executed fill. Append-only.
type Transaction struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	StrategyID string    `json:"strategyId"`
	Side       Side      `json:"type"`
	Amount     float64   `json:"amount"` // BTC
	Price      float64   `json:"price"`  // USD
	Total      float64   `json:"total"`  // USD, amount * price
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
}

// PriceReading is the latest known market price.
type PriceReading struct {
	Price     float64   `json:"price"`
	Change24h float64   `json:"change24h"`
	High24h   float64   `json:"high24h"`
	Low24h    float64   `json:"low24h"`
	Timestamp time.Time `json:"timestamp"`
}
