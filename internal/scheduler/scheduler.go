// Package scheduler owns the run/stop lifecycle of active strategies: one
// ticker loop per strategy id, each re-reading its strategy and portfolio,
// evaluating the engine and committing the result as a single unit.
package scheduler

import (
	"errors"
	"sync"
	"time"

	"github.com/imran22855/BitTrade-Pro/internal/engine"
	"github.com/imran22855/BitTrade-Pro/internal/ledger"
	"github.com/imran22855/BitTrade-Pro/internal/logger"
	"github.com/imran22855/BitTrade-Pro/internal/models"
)

// PriceSource is the read-only price contract the scheduler consumes.
type PriceSource interface {
	Current() (*models.PriceReading, bool)
}

// Scheduler maps strategy ids to running evaluation loops. At most one loop
// runs per id; ticks of one strategy never overlap because each loop runs
// its tick to completion before selecting again.
type Scheduler struct {
	ledger   ledger.Ledger
	prices   PriceSource
	interval time.Duration

	mu      sync.Mutex
	running map[string]chan struct{}
}

// New creates a Scheduler. interval is the evaluation period for every
// strategy loop.
func New(l ledger.Ledger, p PriceSource, interval time.Duration) *Scheduler {
	return &Scheduler{
		ledger:   l,
		prices:   p,
		interval: interval,
		running:  map[string]chan struct{}{},
	}
}

// Start arms the evaluation loop for the strategy. It is a no-op when the
// loop is already running or the strategy is not marked active.
func (s *Scheduler) Start(id string) error {
	strat, err := s.ledger.GetStrategy(id)
	if err != nil {
		return err
	}
	if !strat.IsActive {
		logger.S().Debugw("not scheduling inactive strategy", "strategy", id)
		return nil
	}

	s.mu.Lock()
	if _, ok := s.running[id]; ok {
		s.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	s.running[id] = stop
	s.mu.Unlock()

	go s.run(id, stop)
	logger.S().Infow("started strategy", "strategy", id, "name", strat.Name, "type", strat.Type)
	return nil
}

// Stop cancels the strategy's loop. Idempotent; an in-flight tick finishes
// and commits once.
func (s *Scheduler) Stop(id string) {
	s.mu.Lock()
	stop, ok := s.running[id]
	if ok {
		delete(s.running, id)
		close(stop)
	}
	s.mu.Unlock()

	if ok {
		logger.S().Infow("stopped strategy", "strategy", id)
	}
}

// StopAll cancels every running loop.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	for id, stop := range s.running {
		delete(s.running, id)
		close(stop)
	}
	s.mu.Unlock()
}

// IsRunning reports whether the strategy's loop is armed.
func (s *Scheduler) IsRunning(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.running[id]
	return ok
}

// Resync arms every strategy marked active in the ledger. Called once at
// startup; strategies are not auto-resumed otherwise.
func (s *Scheduler) Resync() error {
	strategies, err := s.ledger.ListActiveStrategies()
	if err != nil {
		return err
	}
	for _, strat := range strategies {
		if err := s.Start(strat.ID); err != nil {
			logger.S().Errorw("failed to resync strategy", "strategy", strat.ID, "error", err)
		}
	}
	logger.S().Infof("resynced %d active strategies", len(strategies))
	return nil
}

func (s *Scheduler) run(id string, stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.tick(id) {
				s.Stop(id)
				return
			}
		}
	}
}

// tick runs one evaluation. It returns false when the loop should disarm
// itself: the strategy was deleted or deactivated externally. Errors inside
// a tick are logged and the next tick is attempted on schedule.
func (s *Scheduler) tick(id string) bool {
	strat, err := s.ledger.GetStrategy(id)
	if errors.Is(err, ledger.ErrNotFound) {
		logger.S().Infow("strategy gone, disarming", "strategy", id)
		return false
	}
	if err != nil {
		logger.S().Errorw("tick failed to load strategy", "strategy", id, "error", err)
		return true
	}
	if !strat.IsActive {
		logger.S().Infow("strategy deactivated, disarming", "strategy", id)
		return false
	}

	reading, ok := s.prices.Current()
	if !ok {
		logger.S().Debugw("no price reading yet, skipping tick", "strategy", id)
		return true
	}

	portfolio, err := s.ledger.GetPortfolio(strat.UserID)
	if err != nil {
		logger.S().Warnw("tick failed to load portfolio", "strategy", id, "user", strat.UserID, "error", err)
		return true
	}

	res := engine.Evaluate(strat, reading.Price, portfolio)
	if !res.StateChanged && len(res.Fills) == 0 {
		return true
	}

	commit := ledger.TickCommit{
		StrategyID:   id,
		State:        res.State,
		StateChanged: res.StateChanged,
	}
	if len(res.Fills) > 0 {
		pf := res.Portfolio
		commit.Portfolio = &pf
		for _, fill := range res.Fills {
			commit.Transactions = append(commit.Transactions, &models.Transaction{
				UserID:     strat.UserID,
				StrategyID: strat.ID,
				Side:       fill.Side,
				Amount:     fill.Amount,
				Price:      fill.Price,
				Total:      fill.Total,
				Status:     "completed",
				Timestamp:  time.Now(),
			})
		}
	}

	if err := s.ledger.CommitTick(commit); err != nil {
		logger.S().Errorw("tick commit failed", "strategy", id, "error", err)
	}
	return true
}
