// Package store holds the transaction list fetched for the active filter
// and sort. A generation counter makes the most recently issued fetch the
// only one allowed to update it.
package store

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"
)

var (
	// ErrStale is returned by Refresh when a newer fetch was issued before
	// this one completed. The result was discarded.
	ErrStale = errors.New("stale fetch discarded")
	// ErrClosed is returned by Refresh once the store is closed.
	ErrClosed = errors.New("store closed")
)

// Fetcher loads transactions for a query.
type Fetcher interface {
	ListTransactions(ctx context.Context, query url.Values) ([]models.Transaction, error)
}

// QuerySource supplies the query of the next fetch.
type QuerySource interface {
	Values() url.Values
}

// Snapshot is the store content after an applied fetch.
type Snapshot struct {
	Transactions []models.Transaction
	Generation   uint64
}

// Listener is notified after every applied fetch.
type Listener func(Snapshot)

// Store is safe for concurrent use.
type Store struct {
	// notifyMu serializes apply-and-notify so listeners observe snapshots
	// in generation order. It is always taken before mu.
	notifyMu sync.Mutex
	mu       sync.RWMutex

	fetcher Fetcher
	query   QuerySource
	logger  logging.Logger

	issued  uint64
	applied uint64
	closed  bool
	loaded  bool
	lastErr error

	txs []models.Transaction
	ids map[models.ID]int

	listeners  map[int]Listener
	nextListen int
}

// New creates an empty store.
func New(fetcher Fetcher, query QuerySource, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Store{
		fetcher:   fetcher,
		query:     query,
		logger:    logger,
		txs:       []models.Transaction{},
		ids:       map[models.ID]int{},
		listeners: map[int]Listener{},
	}
}

// Refresh fetches with the current query. The result replaces the store
// content only if no newer Refresh was issued meanwhile; otherwise ErrStale
// is returned. A failed newest fetch keeps the previous content and is
// reported by Err.
//
// Listeners run before Refresh returns and must not call Refresh.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.issued++
	gen := s.issued
	s.mu.Unlock()

	query := s.query.Values()
	log := s.logger.WithFields(
		logging.F(logging.FieldGeneration, gen),
		logging.F(logging.FieldQuery, query.Encode()),
	)
	log.Debug("Fetching transactions")

	txs, err := s.fetcher.ListTransactions(ctx, query)

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		log.Debug("Store closed, dropping fetch result")
		return ErrClosed
	}
	if gen != s.issued {
		s.mu.Unlock()
		log.Debug("Discarding stale fetch result")
		return ErrStale
	}
	if err != nil {
		s.lastErr = err
		s.mu.Unlock()
		log.WithError(err).Warn("Fetching transactions failed")
		return err
	}

	if txs == nil {
		txs = []models.Transaction{}
	}
	s.txs = txs
	s.ids = make(map[models.ID]int, len(txs))
	for i, tx := range txs {
		s.ids[tx.ID] = i
	}
	s.applied = gen
	s.loaded = true
	s.lastErr = nil

	snap := Snapshot{Transactions: cloneTxs(txs), Generation: gen}
	listeners := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextListen; i++ {
		if l, ok := s.listeners[i]; ok {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	log.Debug("Transactions loaded", logging.F(logging.FieldCount, len(txs)))
	for _, l := range listeners {
		l(snap)
	}
	return nil
}

// Subscribe registers l, called after each applied fetch in subscription
// order. It returns a function that removes the listener.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Close detaches the store. Fetches still in flight complete but no longer
// update the store or notify listeners.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Snapshot returns the current content.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{Transactions: cloneTxs(s.txs), Generation: s.applied}
}

// Transactions returns a copy of the loaded transactions in backend order.
func (s *Store) Transactions() []models.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTxs(s.txs)
}

// Get returns the transaction with id.
func (s *Store) Get(id models.ID) (models.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.ids[id]
	if !ok {
		return models.Transaction{}, false
	}
	return s.txs[i], true
}

// Contains reports whether id is loaded.
func (s *Store) Contains(id models.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of loaded transactions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// Generation returns the generation of the applied content, 0 before the
// first successful fetch.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.applied
}

// Loaded reports whether a fetch has been applied.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Err returns the error of the newest fetch, nil if it succeeded.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func cloneTxs(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	return out
}
