// Package selection tracks which loaded transactions the user has marked
// for a bulk action.
package selection

import (
	"sync"

	"fintrack/fintrack/internal/logging"
	"fintrack/fintrack/internal/models"
	"fintrack/fintrack/internal/store"
)

// Source is the transaction list the selection refers to.
type Source interface {
	Snapshot() store.Snapshot
	Contains(id models.ID) bool
	Subscribe(l store.Listener) (unsubscribe func())
}

// Manager holds a set of selected transaction ids. The set is emptied every
// time the source applies a new fetch, so it never refers to rows that are
// no longer shown.
type Manager struct {
	mu          sync.Mutex
	source      Source
	logger      logging.Logger
	selected    map[models.ID]struct{}
	unsubscribe func()
}

// NewManager creates an empty selection bound to source.
func NewManager(source Source, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	m := &Manager{
		source:   source,
		logger:   logger,
		selected: map[models.ID]struct{}{},
	}
	m.unsubscribe = source.Subscribe(m.onChange)
	return m
}

func (m *Manager) onChange(snap store.Snapshot) {
	m.mu.Lock()
	n := len(m.selected)
	m.selected = map[models.ID]struct{}{}
	m.mu.Unlock()

	if n > 0 {
		m.logger.Debug("Selection cleared after reload",
			logging.F(logging.FieldCount, n),
			logging.F(logging.FieldGeneration, snap.Generation))
	}
}

// Toggle flips the selection of id and reports whether it is now selected.
// Ids that are not loaded are ignored.
func (m *Manager) Toggle(id models.ID) bool {
	if !m.source.Contains(id) {
		m.logger.Debug("Ignoring selection of unknown transaction",
			logging.F(logging.FieldTransactionID, id))
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.selected[id]; ok {
		delete(m.selected, id)
		return false
	}
	m.selected[id] = struct{}{}
	return true
}

// SelectAll selects every loaded transaction.
func (m *Manager) SelectAll() {
	snap := m.source.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = make(map[models.ID]struct{}, len(snap.Transactions))
	for _, tx := range snap.Transactions {
		m.selected[tx.ID] = struct{}{}
	}
}

// Clear empties the selection.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selected = map[models.ID]struct{}{}
}

// IsSelected reports whether id is selected.
func (m *Manager) IsSelected(id models.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.selected[id]
	return ok
}

// IDs returns the selected ids in the order of the loaded list.
func (m *Manager) IDs() []models.ID {
	snap := m.source.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]models.ID, 0, len(m.selected))
	seen := make(map[models.ID]struct{}, len(m.selected))
	for _, tx := range snap.Transactions {
		if _, ok := m.selected[tx.ID]; !ok {
			continue
		}
		if _, dup := seen[tx.ID]; dup {
			continue
		}
		seen[tx.ID] = struct{}{}
		ids = append(ids, tx.ID)
	}
	return ids
}

// Len returns the number of selected transactions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.selected)
}

// IsAllSelected reports whether every loaded transaction is selected. It is
// false for an empty list. Rows sharing an id count once.
func (m *Manager) IsAllSelected() bool {
	snap := m.source.Snapshot()
	distinct := make(map[models.ID]struct{}, len(snap.Transactions))
	for _, tx := range snap.Transactions {
		distinct[tx.ID] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if len(distinct) == 0 || len(m.selected) < len(distinct) {
		return false
	}
	for id := range distinct {
		if _, ok := m.selected[id]; !ok {
			return false
		}
	}
	return true
}

// Close stops following the source.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}
