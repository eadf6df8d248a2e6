// Package memory provides an in-memory ledger store for tests and the
// default development backend.
package memory

import (
	"context"
	"fmt"
	"sync"

	"precos/internal/core"
	"precos/internal/ledger"
)

type Store struct {
	mu   sync.Mutex
	rows []core.PriceObservation
}

var _ ledger.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Load returns a copy of the rows, newest-first.
func (s *Store) Load(_ context.Context) ([]core.PriceObservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.PriceObservation, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

// Append prepends rows, matching the durable stores' newest-first ordering.
func (s *Store) Append(_ context.Context, rows []core.PriceObservation) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if err := row.Validate(); err != nil {
			return fmt.Errorf("invalid ledger row: %w", err)
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]core.PriceObservation, 0, len(rows)+len(s.rows))
	all = append(all, rows...)
	all = append(all, s.rows...)
	s.rows = all
	return nil
}

// Len returns the current row count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}
