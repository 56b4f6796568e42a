// Package ledgerstore persists per-profile scan history, points and counters.
package ledgerstore

import (
	"context"
	"sync"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
)

// MemoryStore keeps ledgers in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	ledgers map[string]*domain.Ledger
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ledgers: make(map[string]*domain.Ledger)}
}

func (s *MemoryStore) Load(ctx context.Context, profileID string) (*domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneLedger(s.ledgers[profileID]), nil
}

func (s *MemoryStore) Update(ctx context.Context, profileID string, fn func(*domain.Ledger) error) (*domain.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := cloneLedger(s.ledgers[profileID])
	if err := fn(working); err != nil {
		return nil, err
	}
	s.ledgers[profileID] = working
	return cloneLedger(working), nil
}

// cloneLedger returns a deep copy so callers never share slices with the store.
// A nil ledger clones to an empty one.
func cloneLedger(l *domain.Ledger) *domain.Ledger {
	if l == nil {
		return &domain.Ledger{History: []domain.HistoryEntry{}}
	}
	out := *l
	out.History = append(make([]domain.HistoryEntry, 0, len(l.History)), l.History...)
	return &out
}

var _ domain.LedgerStore = (*MemoryStore)(nil)
