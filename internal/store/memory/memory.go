package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"tesoreria/internal/core"
	"tesoreria/internal/store"
)

type record struct {
	importID string
	tx       core.Transaction
}

// Store keeps the ledger in process memory. It is safe for concurrent use.
type Store struct {
	mu      sync.Mutex
	centers []core.Center
	types   []core.MovementType
	items   []record
}

var _ store.Store = (*Store)(nil)

func New(cat core.Catalog) *Store {
	s := &Store{}
	_ = s.SeedCatalog(context.Background(), cat)
	return s
}

// AppendTransactions validates every row first so a bad row rejects the whole batch.
func (s *Store) AppendTransactions(_ context.Context, importID string, txs []core.Transaction) ([]core.Transaction, error) {
	out := make([]core.Transaction, len(txs))
	for i, tx := range txs {
		if err := tx.Validate(nil); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		out[i] = tx
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range out {
		s.items = append(s.items, record{importID: importID, tx: tx})
	}
	return out, nil
}

// ListTransactions returns matching rows ordered by date, keeping insertion
// order for equal dates.
func (s *Store) ListTransactions(_ context.Context, from, to string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.items))
	for _, r := range s.items {
		if store.InPeriodRange(r.tx.Period(), from, to) {
			out = append(out, r.tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// CountImport returns how many rows were stored under importID.
func (s *Store) CountImport(importID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.items {
		if r.importID == importID {
			n++
		}
	}
	return n
}

func (s *Store) ListCenters(_ context.Context) ([]core.Center, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Center(nil), s.centers...), nil
}

func (s *Store) ListMovementTypes(_ context.Context) ([]core.MovementType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.MovementType(nil), s.types...), nil
}

// SeedCatalog upserts by ID, preserving the order of first appearance.
func (s *Store) SeedCatalog(_ context.Context, cat core.Catalog) error {
	for _, c := range cat.Centers {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("center %q: %w", c.ID, err)
		}
	}
	for _, mt := range cat.MovementTypes {
		if err := mt.Validate(); err != nil {
			return fmt.Errorf("movement type %q: %w", mt.ID, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range cat.Centers {
		s.centers = upsert(s.centers, c, func(x core.Center) string { return x.ID })
	}
	for _, mt := range cat.MovementTypes {
		s.types = upsert(s.types, mt, func(x core.MovementType) string { return x.ID })
	}
	return nil
}

func upsert[T any](list []T, v T, id func(T) string) []T {
	for i := range list {
		if id(list[i]) == id(v) {
			list[i] = v
			return list
		}
	}
	return append(list, v)
}
