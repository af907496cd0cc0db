package memory

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"cuotas/internal/core"

	"github.com/shopspring/decimal"
)

// Store keeps snapshots in memory, one per ledger partition. It backs local
// development and the test suites; the sqlite store is the durable variant.
type Store struct {
	mu        sync.Mutex
	snapshots map[string]core.Snapshot
}

func New() *Store {
	return &Store{snapshots: map[string]core.Snapshot{}}
}

// NewFromFiles seeds the store from base/seed_snapshot.json when present.
// Without a seed file the "default" partition starts with the three
// historical demo cards so a fresh checkout has something to show.
func NewFromFiles(base string) *Store {
	s := New()
	if snap, ok := readSeed(filepath.Join(base, "seed_snapshot.json")); ok {
		s.snapshots["default"] = snap
		return s
	}
	s.snapshots["default"] = seedSnapshot()
	return s
}

// Load returns a deep copy so callers can never mutate stored state.
func (s *Store) Load(_ context.Context, ledgerID string) (core.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[ledgerID]
	if !ok {
		empty := core.Snapshot{}
		empty.Normalize()
		return empty, nil
	}
	out := snap.Clone()
	out.Normalize()
	return out, nil
}

func (s *Store) Save(_ context.Context, ledgerID string, snap core.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := snap.Clone()
	stored.Normalize()
	s.snapshots[ledgerID] = stored
	return nil
}

func (s *Store) ListLedgerIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.snapshots))
	for id := range s.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func readSeed(path string) (core.Snapshot, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.Snapshot{}, false
	}
	var snap core.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return core.Snapshot{}, false
	}
	snap.Normalize()
	return snap, true
}

func seedSnapshot() core.Snapshot {
	snap := core.Snapshot{}
	for _, seed := range []struct {
		name  string
		limit int64
	}{
		{"Ualá", 700000},
		{"BBVA NOE", 290000},
		{"BBVA TOMAS", 290000},
	} {
		card, err := core.NewCard(seed.name, decimal.NewFromInt(seed.limit), true)
		if err != nil {
			continue
		}
		snap.Cards = append(snap.Cards, card)
	}
	snap.Normalize()
	return snap
}
