// Package memory is an in-process archive target used in tests and in the
// memory backend, where the archive is a no-op beyond bookkeeping.
package memory

import (
	"context"
	"fmt"
	"sync"

	"finsmart/internal/core"
)

type Store struct {
	mu    sync.Mutex
	items []core.ExpenseRecord
}

func New() *Store {
	return &Store{}
}

// Append stores the record and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, rec core.ExpenseRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, rec)
	return fmt.Sprintf("mem:%d", len(s.items)), nil
}

// Items returns a copy of everything appended so far.
func (s *Store) Items() []core.ExpenseRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.ExpenseRecord, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of appended records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
