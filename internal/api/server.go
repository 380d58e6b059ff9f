// Package api is the inbound HTTP surface. It is thin glue: request
// validation and routing into the ledger, price feed and scheduler.
package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/imran22855/BitTrade-Pro/internal/ledger"
	"github.com/imran22855/BitTrade-Pro/internal/models"
	"github.com/imran22855/BitTrade-Pro/internal/pricefeed"
	"github.com/imran22855/BitTrade-Pro/internal/reporter"
	"github.com/imran22855/BitTrade-Pro/internal/scheduler"
)

// defaultUserID identifies requests that carry no X-User-ID header. There is
// no authentication; the header exists so multiple paper portfolios can
// coexist.
const defaultUserID = "demo"

// Server wires the HTTP routes to the service's collaborators.
type Server struct {
	ledger ledger.Ledger
	prices pricefeed.Source
	sched  *scheduler.Scheduler
	router *gin.Engine
}

// NewServer builds the router.
func NewServer(l ledger.Ledger, p pricefeed.Source, sched *scheduler.Scheduler) *Server {
	s := &Server{ledger: l, prices: p, sched: sched}

	router := gin.New()
	router.Use(gin.Recovery())

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/price/current", s.getCurrentPrice)
		apiGroup.GET("/portfolio", s.getPortfolio)
		apiGroup.GET("/strategies", s.listStrategies)
		apiGroup.POST("/strategies", s.createStrategy)
		apiGroup.PATCH("/strategies/:id", s.updateStrategy)
		apiGroup.DELETE("/strategies/:id", s.deleteStrategy)
		apiGroup.GET("/transactions", s.listTransactions)
		apiGroup.GET("/stats", s.getStats)
		apiGroup.GET("/report", s.getReport)
	}

	s.router = router
	return s
}

// Handler exposes the router for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func userID(c *gin.Context) string {
	if id := c.GetHeader("X-User-ID"); id != "" {
		return id
	}
	return defaultUserID
}

func (s *Server) getCurrentPrice(c *gin.Context) {
	if reading, ok := s.prices.Current(); ok {
		c.JSON(http.StatusOK, reading)
		return
	}
	reading, err := s.prices.Fetch(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no price reading available"})
		return
	}
	c.JSON(http.StatusOK, reading)
}

func (s *Server) getPortfolio(c *gin.Context) {
	portfolio, err := s.ledger.GetOrCreatePortfolio(userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, portfolio)
}

func (s *Server) listStrategies(c *gin.Context) {
	strategies, err := s.ledger.ListStrategies(userID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if strategies == nil {
		strategies = []*models.Strategy{}
	}
	c.JSON(http.StatusOK, strategies)
}

type createStrategyRequest struct {
	Name              string   `json:"name" binding:"required"`
	Type              string   `json:"type" binding:"required"`
	RiskTolerance     *int     `json:"riskTolerance"`
	TradeSize         *float64 `json:"tradeSize"`
	GridInterval      *float64 `json:"gridInterval"`
	GridProfitPercent *float64 `json:"gridProfitPercent"`
	GridLowerBound    float64  `json:"gridLowerBound"`
	GridUpperBound    float64  `json:"gridUpperBound"`
}

func (s *Server) createStrategy(c *gin.Context) {
	var req createStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	strat := &models.Strategy{
		UserID:            userID(c),
		Name:              req.Name,
		Type:              req.Type,
		RiskTolerance:     50,
		TradeSizePercent:  25,
		GridInterval:      2000,
		GridProfitPercent: 5.0,
		GridLowerBound:    req.GridLowerBound,
		GridUpperBound:    req.GridUpperBound,
	}
	if req.RiskTolerance != nil {
		strat.RiskTolerance = *req.RiskTolerance
	}
	if req.TradeSize != nil {
		strat.TradeSizePercent = *req.TradeSize
	}
	if req.GridInterval != nil {
		strat.GridInterval = *req.GridInterval
	}
	if req.GridProfitPercent != nil {
		strat.GridProfitPercent = *req.GridProfitPercent
	}

	if strat.TradeSizePercent < 0 || strat.TradeSizePercent > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tradeSize must be between 0 and 100"})
		return
	}

	if err := s.ledger.CreateStrategy(strat); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, strat)
}

type updateStrategyRequest struct {
	Name              *string  `json:"name"`
	Type              *string  `json:"type"`
	IsActive          *bool    `json:"isActive"`
	RiskTolerance     *int     `json:"riskTolerance"`
	TradeSize         *float64 `json:"tradeSize"`
	GridInterval      *float64 `json:"gridInterval"`
	GridProfitPercent *float64 `json:"gridProfitPercent"`
	GridLowerBound    *float64 `json:"gridLowerBound"`
	GridUpperBound    *float64 `json:"gridUpperBound"`
	// ResetState discards the engine state so the grid re-initializes on
	// the next tick.
	ResetState bool `json:"resetState"`
}

func (s *Server) updateStrategy(c *gin.Context) {
	var req updateStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	updated, err := s.ledger.UpdateStrategy(id, ledger.StrategyUpdate{
		Name:              req.Name,
		Type:              req.Type,
		IsActive:          req.IsActive,
		RiskTolerance:     req.RiskTolerance,
		TradeSizePercent:  req.TradeSize,
		GridInterval:      req.GridInterval,
		GridProfitPercent: req.GridProfitPercent,
		GridLowerBound:    req.GridLowerBound,
		GridUpperBound:    req.GridUpperBound,
		ClearState:        req.ResetState,
	})
	if errors.Is(err, ledger.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "strategy not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Activation transitions drive the scheduler.
	if req.IsActive != nil {
		if *req.IsActive {
			if err := s.sched.Start(id); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		} else {
			s.sched.Stop(id)
		}
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteStrategy(c *gin.Context) {
	id := c.Param("id")
	s.sched.Stop(id)

	err := s.ledger.DeleteStrategy(id)
	if errors.Is(err, ledger.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "strategy not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) listTransactions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	txns, err := s.ledger.ListTransactions(userID(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if txns == nil {
		txns = []*models.Transaction{}
	}
	c.JSON(http.StatusOK, txns)
}

func (s *Server) getStats(c *gin.Context) {
	uid := userID(c)
	portfolio, err := s.ledger.GetOrCreatePortfolio(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	txns, err := s.ledger.ListTransactions(uid, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
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

	c.JSON(http.StatusOK, gin.H{
		"totalTrades": len(txns),
		"buyTrades":   buys,
		"sellTrades":  sells,
		"volumeUSD":   volume,
		"btcBalance":  portfolio.BTCBalance,
		"usdBalance":  portfolio.USDBalance,
	})
}

func (s *Server) getReport(c *gin.Context) {
	uid := userID(c)
	portfolio, err := s.ledger.GetOrCreatePortfolio(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	txns, err := s.ledger.ListTransactions(uid, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var price float64
	if reading, ok := s.prices.Current(); ok {
		price = reading.Price
	}
	c.String(http.StatusOK, reporter.Render(portfolio, txns, price))
}
