package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/imran22855/BitTrade-Pro/internal/models"
)

// Defaults applied when the config file leaves a field unset.
const (
	DefaultListenAddr      = ":8080"
	DefaultDBPath          = "data/bittrade"
	DefaultSymbol          = "BTCUSDT"
	DefaultTickIntervalSec = 30
	DefaultPriceRefreshSec = 60
	DefaultWSBaseURL       = "wss://stream.binance.com:9443"
	DefaultStartingUSD     = 100000
)

// Default returns a configuration with every default applied, for running
// without a config file.
func Default() *models.Config {
	cfg := &models.Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads the JSON config file and applies defaults and environment
// overrides. LISTEN_ADDR and DB_PATH take precedence over the file so
// deployments can relocate the service without editing it.
func Load(path string) (*models.Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := &models.Config{}
	if err := json.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(cfg)

	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	return cfg, nil
}

func applyDefaults(cfg *models.Config) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}
	if cfg.Symbol == "" {
		cfg.Symbol = DefaultSymbol
	}
	if cfg.TickIntervalSec <= 0 {
		cfg.TickIntervalSec = DefaultTickIntervalSec
	}
	if cfg.PriceRefreshSec <= 0 {
		cfg.PriceRefreshSec = DefaultPriceRefreshSec
	}
	if cfg.WSBaseURL == "" {
		cfg.WSBaseURL = DefaultWSBaseURL
	}
	if cfg.StartingUSDBalance <= 0 {
		cfg.StartingUSDBalance = DefaultStartingUSD
	}
}
