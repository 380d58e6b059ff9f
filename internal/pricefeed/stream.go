package pricefeed

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/imran22855/BitTrade-Pro/internal/logger"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// StartStream connects to the aggTrade websocket stream and keeps the cached
// price current. The loop reconnects until Stop is called.
func (f *BinanceFeed) StartStream() {
	go f.streamLoop()
}

func (f *BinanceFeed) streamLoop() {
	wsURL := fmt.Sprintf("%s/ws/%s@aggTrade", f.wsBaseURL, strings.ToLower(f.symbol))
	for {
		select {
		case <-f.stopChan:
			return
		default:
		}

		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		if err != nil {
			logger.S().Warnf("price stream connect failed: %v, retrying in 5s", err)
			select {
			case <-f.stopChan:
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		logger.S().Infof("price stream connected: %s", wsURL)
		if err := f.readStream(conn); err != nil {
			logger.S().Warnf("price stream dropped: %v", err)
		}
		conn.Close()

		select {
		case <-f.stopChan:
			return
		case <-time.After(5 * time.Second):
		}
	}
}

// readStream consumes trade messages from one established connection and
// blocks until the connection breaks or the feed is stopped.
func (f *BinanceFeed) readStream(conn *websocket.Conn) error {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()
	pingStop := make(chan struct{})
	defer close(pingStop)

	go func() {
		for {
			select {
			case <-pingTicker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-pingStop:
				return
			case <-f.stopChan:
				return
			}
		}
	}()

	for {
		select {
		case <-f.stopChan:
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		default:
			_, message, err := conn.ReadMessage()
			if err != nil {
				return fmt.Errorf("read failed: %w", err)
			}

			var trade struct {
				Price json.Number `json:"p"`
			}
			if err := json.Unmarshal(message, &trade); err != nil {
				logger.S().Debugf("unparseable stream message: %v", err)
				continue
			}
			price, err := trade.Price.Float64()
			if err != nil || price == 0 {
				continue
			}
			f.setStreamPrice(price)
		}
	}
}
