// Package pricefeed supplies the latest known BTC price reading. A REST poll
// loop refreshes the full 24h stats; an optional websocket stream keeps the
// last price current between refreshes.
package pricefeed

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/imran22855/BitTrade-Pro/internal/logger"
	"github.com/imran22855/BitTrade-Pro/internal/models"
)

// Source is the read side consumed by the scheduler and the HTTP layer.
type Source interface {
	// Current returns the cached reading, or false when no reading has
	// been obtained yet.
	Current() (*models.PriceReading, bool)
	// Fetch forces a refresh from the upstream API.
	Fetch(ctx context.Context) (*models.PriceReading, error)
}

// BinanceFeed polls Binance public market data for a single symbol.
type BinanceFeed struct {
	client    *binance.Client
	symbol    string
	wsBaseURL string

	mu      sync.RWMutex
	current *models.PriceReading

	stopChan chan struct{}
	stopOnce sync.Once
}

// NewBinanceFeed creates a feed for the given symbol. Public market data
// endpoints need no API credentials.
func NewBinanceFeed(symbol, wsBaseURL string) *BinanceFeed {
	return &BinanceFeed{
		client:    binance.NewClient("", ""),
		symbol:    symbol,
		wsBaseURL: wsBaseURL,
		stopChan:  make(chan struct{}),
	}
}

// Current returns the cached reading.
func (f *BinanceFeed) Current() (*models.PriceReading, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current == nil {
		return nil, false
	}
	reading := *f.current
	return &reading, true
}

// Fetch refreshes the cached reading from the 24h ticker stats endpoint.
// On failure the previous reading is kept.
func (f *BinanceFeed) Fetch(ctx context.Context) (*models.PriceReading, error) {
	stats, err := f.client.NewListPriceChangeStatsService().Symbol(f.symbol).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price stats: %w", err)
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("no price stats returned for %s", f.symbol)
	}

	s := stats[0]
	price, err := strconv.ParseFloat(s.LastPrice, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last price %q: %w", s.LastPrice, err)
	}
	change, _ := strconv.ParseFloat(s.PriceChangePercent, 64)
	high, _ := strconv.ParseFloat(s.HighPrice, 64)
	low, _ := strconv.ParseFloat(s.LowPrice, 64)

	reading := &models.PriceReading{
		Price:     price,
		Change24h: change,
		High24h:   high,
		Low24h:    low,
		Timestamp: time.Now(),
	}

	f.mu.Lock()
	f.current = reading
	f.mu.Unlock()

	out := *reading
	return &out, nil
}

// StartPolling fetches once immediately and then refreshes on the given
// interval until Stop is called.
func (f *BinanceFeed) StartPolling(interval time.Duration) {
	go func() {
		f.refresh()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-f.stopChan:
				return
			case <-ticker.C:
				f.refresh()
			}
		}
	}()
}

func (f *BinanceFeed) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := f.Fetch(ctx); err != nil {
		logger.S().Warnf("price refresh failed, keeping last reading: %v", err)
	}
}

// setStreamPrice updates only the last price from the websocket stream,
// preserving the REST-sourced 24h fields.
func (f *BinanceFeed) setStreamPrice(price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == nil {
		f.current = &models.PriceReading{}
	}
	f.current.Price = price
	f.current.Timestamp = time.Now()
}

// Stop terminates the poll loop and the stream.
func (f *BinanceFeed) Stop() {
	f.stopOnce.Do(func() {
		close(f.stopChan)
	})
}
