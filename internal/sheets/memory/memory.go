// Package memory is an in-process TransactionWriter used for dry runs and
// tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"gastos/internal/sheets"
)

type Store struct {
	mu   sync.Mutex
	rows []sheets.Row
}

var _ sheets.TransactionWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// AppendRows stores the rows and returns a synthetic range reference.
func (s *Store) AppendRows(_ context.Context, rows []sheets.Row) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(rows) == 0 {
		return "", nil
	}
	first := len(s.rows) + 1
	s.rows = append(s.rows, rows...)
	return fmt.Sprintf("mem:%d-%d", first, len(s.rows)), nil
}

// Rows returns a copy of everything written so far.
func (s *Store) Rows() []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Row(nil), s.rows...)
}
