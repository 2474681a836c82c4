package memory

import (
	"context"
	"sync"

	"budget/internal/core"
	"budget/internal/storage"
)

// Store keeps the persisted sequence in memory. It is useful for tests and
// for running the CLI without touching disk.
type Store struct {
	mu        sync.Mutex
	records   []core.Record
	persisted bool
	saves     int
	loadErr   error
	saveErr   error
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// NewWith returns a store that already holds records, as if saved earlier.
func NewWith(records []core.Record) *Store {
	return &Store{records: append([]core.Record(nil), records...), persisted: true}
}

func (s *Store) Name() string { return "memory" }

func (s *Store) Load(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if !s.persisted {
		return nil, nil
	}
	return append([]core.Record(nil), s.records...), nil
}

func (s *Store) Save(_ context.Context, records []core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = append([]core.Record(nil), records...)
	s.persisted = true
	s.saves++
	return nil
}

// FailLoad makes every following Load return err (nil clears it).
func (s *Store) FailLoad(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
}

// FailSave makes every following Save return err (nil clears it).
func (s *Store) FailSave(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// Saves reports how many successful Save calls were made.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}
