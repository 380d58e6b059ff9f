// Package ledger is the key-addressed persistence layer: strategies,
// portfolios and the append-only transaction log.
package ledger

import (
	"errors"

	"github.com/imran22855/BitTrade-Pro/internal/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// StrategyUpdate is a partial update; nil fields are left untouched.
type StrategyUpdate struct {
	Name              *string
	Type              *string
	IsActive          *bool
	RiskTolerance     *int
	TradeSizePercent  *float64
	GridInterval      *float64
	GridProfitPercent *float64
	GridLowerBound    *float64
	GridUpperBound    *float64
	State             *models.StrategyState
	// ClearState discards the engine state, forcing re-initialization on
	// the next tick.
	ClearState bool
}

// TickCommit is the atomic unit written at the end of a scheduler tick:
// the transactions for every fill, the post-fill balances and the new
// engine state are applied together or not at all.
type TickCommit struct {
	StrategyID   string
	State        *models.StrategyState
	StateChanged bool
	Portfolio    *models.Portfolio
	Transactions []*models.Transaction
}

// Ledger abstracts the underlying storage engine from the rest of the
// application.
type Ledger interface {
	CreateStrategy(s *models.Strategy) error
	GetStrategy(id string) (*models.Strategy, error)
	ListStrategies(userID string) ([]*models.Strategy, error)
	// ListActiveStrategies returns every strategy with isActive set,
	// across all users. Used by the startup resync.
	ListActiveStrategies() ([]*models.Strategy, error)
	UpdateStrategy(id string, upd StrategyUpdate) (*models.Strategy, error)
	DeleteStrategy(id string) error

	GetPortfolio(userID string) (*models.Portfolio, error)
	// GetOrCreatePortfolio seeds a fresh portfolio with the configured
	// paper balance on first access.
	GetOrCreatePortfolio(userID string) (*models.Portfolio, error)
	UpdatePortfolio(p *models.Portfolio) error

	CreateTransaction(t *models.Transaction) error
	// ListTransactions returns the user's transactions, newest first.
	// A limit <= 0 means no limit.
	ListTransactions(userID string, limit int) ([]*models.Transaction, error)

	CommitTick(c TickCommit) error

	Close() error
}
