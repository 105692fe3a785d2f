package session

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore is a volatile Store backed by a process-local map. It is
// safe for concurrent use and suited for tests and single-process demos.
// Records are deep-copied on both Load and Save so callers and the store
// never share mutable state.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewInMemoryStore constructs an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]*Record)}
}

// Load returns a copy of the record for id, or (nil, nil) when absent.
func (s *InMemoryStore) Load(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return record.Clone(), nil
}

// Save stores a copy of the record, stamping Updated.
func (s *InMemoryStore) Save(_ context.Context, record *Record) error {
	clone := record.Clone()
	clone.Updated = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = clone
	return nil
}
