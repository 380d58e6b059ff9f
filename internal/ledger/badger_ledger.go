package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/imran22855/BitTrade-Pro/internal/models"
)

const (
	strategyPrefix  = "strategy:"
	portfolioPrefix = "portfolio:"
	txnPrefix       = "txn:"
)

// badgerLedger is the BadgerDB implementation of the Ledger. Every record is
// stored as a JSON value under a prefixed key.
type badgerLedger struct {
	db          *badger.DB
	startingUSD float64
}

// OpenBadger opens (or creates) the database at dbPath.
func OpenBadger(dbPath string, startingUSD float64) (Ledger, error) {
	opts := badger.DefaultOptions(dbPath)
	// Badger's own logging is noisy; errors still surface from operations.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger database: %w", err)
	}

	return &badgerLedger{db: db, startingUSD: startingUSD}, nil
}

func strategyKey(id string) []byte       { return []byte(strategyPrefix + id) }
func portfolioKey(userID string) []byte  { return []byte(portfolioPrefix + userID) }
func txnKey(t *models.Transaction) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d:%s", txnPrefix, t.UserID, t.Timestamp.UnixNano(), t.ID))
}

func setJSON(txn *badger.Txn, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func getJSON(txn *badger.Txn, key []byte, v interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func mapNotFound(err error) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

func (l *badgerLedger) CreateStrategy(s *models.Strategy) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	return l.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, strategyKey(s.ID), s)
	})
}

func (l *badgerLedger) GetStrategy(id string) (*models.Strategy, error) {
	var s models.Strategy
	err := l.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, strategyKey(id), &s)
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &s, nil
}

func (l *badgerLedger) listStrategies(filter func(*models.Strategy) bool) ([]*models.Strategy, error) {
	var out []*models.Strategy
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(strategyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var s models.Strategy
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &s)
			})
			if err != nil {
				return err
			}
			if filter(&s) {
				out = append(out, &s)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (l *badgerLedger) ListStrategies(userID string) ([]*models.Strategy, error) {
	return l.listStrategies(func(s *models.Strategy) bool { return s.UserID == userID })
}

func (l *badgerLedger) ListActiveStrategies() ([]*models.Strategy, error) {
	return l.listStrategies(func(s *models.Strategy) bool { return s.IsActive })
}

func (l *badgerLedger) UpdateStrategy(id string, upd StrategyUpdate) (*models.Strategy, error) {
	var s models.Strategy
	err := l.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, strategyKey(id), &s); err != nil {
			return err
		}
		applyStrategyUpdate(&s, upd)
		return setJSON(txn, strategyKey(id), &s)
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &s, nil
}

func applyStrategyUpdate(s *models.Strategy, upd StrategyUpdate) {
	if upd.Name != nil {
		s.Name = *upd.Name
	}
	if upd.Type != nil {
		s.Type = *upd.Type
	}
	if upd.IsActive != nil {
		s.IsActive = *upd.IsActive
	}
	if upd.RiskTolerance != nil {
		s.RiskTolerance = *upd.RiskTolerance
	}
	if upd.TradeSizePercent != nil {
		s.TradeSizePercent = *upd.TradeSizePercent
	}
	if upd.GridInterval != nil {
		s.GridInterval = *upd.GridInterval
	}
	if upd.GridProfitPercent != nil {
		s.GridProfitPercent = *upd.GridProfitPercent
	}
	if upd.GridLowerBound != nil {
		s.GridLowerBound = *upd.GridLowerBound
	}
	if upd.GridUpperBound != nil {
		s.GridUpperBound = *upd.GridUpperBound
	}
	if upd.State != nil {
		s.State = upd.State
	}
	if upd.ClearState {
		s.State = nil
	}
}

func (l *badgerLedger) DeleteStrategy(id string) error {
	err := l.db.Update(func(txn *badger.Txn) error {
		// Probe first so a missing record reports ErrNotFound.
		if _, err := txn.Get(strategyKey(id)); err != nil {
			return err
		}
		return txn.Delete(strategyKey(id))
	})
	return mapNotFound(err)
}

func (l *badgerLedger) GetPortfolio(userID string) (*models.Portfolio, error) {
	var p models.Portfolio
	err := l.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, portfolioKey(userID), &p)
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (l *badgerLedger) GetOrCreatePortfolio(userID string) (*models.Portfolio, error) {
	p, err := l.GetPortfolio(userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	p = &models.Portfolio{
		UserID:     userID,
		USDBalance: l.startingUSD,
		UpdatedAt:  time.Now(),
	}
	err = l.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, portfolioKey(userID), p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (l *badgerLedger) UpdatePortfolio(p *models.Portfolio) error {
	p.UpdatedAt = time.Now()
	return l.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, portfolioKey(p.UserID), p)
	})
}

func (l *badgerLedger) CreateTransaction(t *models.Transaction) error {
	fillTransactionDefaults(t)
	return l.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, txnKey(t), t)
	})
}

func fillTransactionDefaults(t *models.Transaction) {
	if t.ID == "" {
		t.ID = NewID()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	if t.Status == "" {
		t.Status = "completed"
	}
}

func (l *badgerLedger) ListTransactions(userID string, limit int) ([]*models.Transaction, error) {
	var out []*models.Transaction
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(txnPrefix + userID + ":")
		// Keys embed the timestamp, so reverse iteration is newest first.
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// A reverse iterator must seek past the end of the prefix range.
		seek := append([]byte(txnPrefix+userID+":"), 0xFF)
		for it.Seek(seek); it.Valid(); it.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			var t models.Transaction
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &t)
			})
			if err != nil {
				return err
			}
			out = append(out, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CommitTick applies a full tick result in one transaction so a crash can
// never leave a fill without its balance change or state update.
func (l *badgerLedger) CommitTick(c TickCommit) error {
	for _, t := range c.Transactions {
		fillTransactionDefaults(t)
	}
	err := l.db.Update(func(txn *badger.Txn) error {
		for _, t := range c.Transactions {
			if err := setJSON(txn, txnKey(t), t); err != nil {
				return err
			}
		}
		if c.Portfolio != nil {
			c.Portfolio.UpdatedAt = time.Now()
			if err := setJSON(txn, portfolioKey(c.Portfolio.UserID), c.Portfolio); err != nil {
				return err
			}
		}
		if c.StateChanged {
			var s models.Strategy
			if err := getJSON(txn, strategyKey(c.StrategyID), &s); err != nil {
				return err
			}
			s.State = c.State
			if err := setJSON(txn, strategyKey(c.StrategyID), &s); err != nil {
				return err
			}
		}
		return nil
	})
	return mapNotFound(err)
}

func (l *badgerLedger) Close() error {
	return l.db.Close()
}
