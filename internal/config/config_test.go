package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	require.NoError(t, err)

	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultSymbol, cfg.Symbol)
	assert.Equal(t, DefaultTickIntervalSec, cfg.TickIntervalSec)
	assert.Equal(t, DefaultPriceRefreshSec, cfg.PriceRefreshSec)
	assert.Equal(t, DefaultWSBaseURL, cfg.WSBaseURL)
	assert.Equal(t, float64(DefaultStartingUSD), cfg.StartingUSDBalance)
	assert.False(t, cfg.DisablePriceStream)
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
		"listen_addr": ":9999",
		"symbol": "ETHUSDT",
		"tick_interval_sec": 5,
		"starting_usd_balance": 50000,
		"disable_price_stream": true,
		"log": {"level": "debug", "output": "console"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.ListenAddr)
	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, 5, cfg.TickIntervalSec)
	assert.Equal(t, 50000.0, cfg.StartingUSDBalance)
	assert.True(t, cfg.DisablePriceStream)
	assert.Equal(t, "debug", cfg.LogConfig.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("DB_PATH", "/var/lib/bittrade")

	cfg, err := Load(writeConfig(t, `{"listen_addr": ":9999", "db_path": "data/other"}`))
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/bittrade", cfg.DBPath)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, DefaultSymbol, cfg.Symbol)
	assert.Equal(t, float64(DefaultStartingUSD), cfg.StartingUSDBalance)
}

func TestLoadMalformedJSON(t *testing.T) {
	_, err := Load(writeConfig(t, `{"listen_addr": }`))
	assert.Error(t, err)
}
