package main

import (
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/imran22855/BitTrade-Pro/internal/api"
	"github.com/imran22855/BitTrade-Pro/internal/config"
	"github.com/imran22855/BitTrade-Pro/internal/ledger"
	"github.com/imran22855/BitTrade-Pro/internal/logger"
	"github.com/imran22855/BitTrade-Pro/internal/models"
	"github.com/imran22855/BitTrade-Pro/internal/pricefeed"
	"github.com/imran22855/BitTrade-Pro/internal/reporter"
	"github.com/imran22855/BitTrade-Pro/internal/scheduler"
	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.json", "path to the config file")
	flag.Parse()

	// A default logger so config loading itself can log.
	logger.Init(models.LogConfig{Level: "info", Output: "console"})

	if err := godotenv.Load(); err != nil {
		logger.S().Info("no .env file found, reading from system environment")
	}

	cfg, err := config.Load(*configPath)
	if errors.Is(err, os.ErrNotExist) {
		logger.S().Infof("config file %s not found, using defaults", *configPath)
		cfg = config.Default()
	} else if err != nil {
		logger.S().Fatalf("failed to load config: %v", err)
	}

	logger.Init(cfg.LogConfig)
	defer logger.S().Sync()

	led, err := ledger.OpenBadger(cfg.DBPath, cfg.StartingUSDBalance)
	if err != nil {
		logger.S().Fatalf("failed to open ledger: %v", err)
	}
	defer led.Close()

	feed := pricefeed.NewBinanceFeed(cfg.Symbol, cfg.WSBaseURL)
	feed.StartPolling(time.Duration(cfg.PriceRefreshSec) * time.Second)
	if !cfg.DisablePriceStream {
		feed.StartStream()
	}

	sched := scheduler.New(led, feed, time.Duration(cfg.TickIntervalSec)*time.Second)
	if err := sched.Resync(); err != nil {
		logger.S().Errorf("startup resync failed: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	server := api.NewServer(led, feed, sched)
	go func() {
		logger.S().Infof("HTTP server listening on %s", cfg.ListenAddr)
		if err := server.Run(cfg.ListenAddr); err != nil {
			logger.S().Fatalf("HTTP server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.S().Info("shutting down...")
	sched.StopAll()
	feed.Stop()
	printSessionReport(led, feed)
	logger.S().Info("shutdown complete")
}

// printSessionReport logs the demo portfolio's report so a local session
// ends with a summary, mirroring what GET /api/report serves.
func printSessionReport(led ledger.Ledger, feed pricefeed.Source) {
	portfolio, err := led.GetPortfolio("demo")
	if err != nil {
		return
	}
	txns, err := led.ListTransactions("demo", 20)
	if err != nil {
		return
	}
	var price float64
	if reading, ok := feed.Current(); ok {
		price = reading.Price
	}
	logger.S().Infof("session report:\n%s", reporter.Render(portfolio, txns, price))
}
