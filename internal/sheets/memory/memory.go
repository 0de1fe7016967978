// Package memory is an in-process TransactionMirror for tests and local runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"smartcents/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.Row
}

var _ sheets.TransactionMirror = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Append stores the row and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, r sheets.Row) (string, error) {
	if r.TransactionID == "" {
		return "", fmt.Errorf("row without transaction id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.rows {
		if existing.TransactionID == r.TransactionID {
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	s.rows = append(s.rows, r)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

func (s *Store) DeleteTransaction(_ context.Context, transactionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	removed := false
	for _, r := range s.rows {
		if r.TransactionID == transactionID {
			removed = true
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return removed, nil
}

func (s *Store) ClearCategory(_ context.Context, categoryID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for i := range s.rows {
		if s.rows[i].CategoryID == categoryID {
			s.rows[i].Category = ""
			s.rows[i].CategoryID = ""
			n++
		}
	}
	return n, nil
}

// Rows returns a copy of the mirrored rows in insertion order.
func (s *Store) Rows() []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Row(nil), s.rows...)
}
