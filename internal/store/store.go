// Package store holds the authoritative row set backing the record grid.
package store

import (
	"sync"
	"time"

	"github.com/oakwood-commons/crmx/internal/record"
)

// Snapshot is a consistent copy of the store at one generation.
type Snapshot struct {
	Rows       []record.Record
	Generation uint64
	UpdatedAt  time.Time
}

// Store holds the live rows. It is only ever replaced wholesale.
type Store struct {
	mu         sync.RWMutex
	rows       []record.Record
	generation uint64
	updatedAt  time.Time
	now        func() time.Time
}

// New returns a store seeded with rows at generation 0.
func New(rows []record.Record) *Store {
	return &Store{
		rows:      clone(rows),
		updatedAt: time.Now(),
		now:       time.Now,
	}
}

// Replace supersedes the current rows entirely and returns the new generation.
// An empty slice clears the store.
func (s *Store) Replace(rows []record.Record) uint64 {
	next := clone(rows)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = next
	s.generation++
	s.updatedAt = s.now()
	return s.generation
}

// Current returns a copy of the live rows.
func (s *Store) Current() []record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.rows)
}

// Generation returns the replacement counter.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

// Len returns the number of live rows.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Snapshot returns rows and generation read under one lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Rows:       clone(s.rows),
		Generation: s.generation,
		UpdatedAt:  s.updatedAt,
	}
}

func clone(rows []record.Record) []record.Record {
	dup := make([]record.Record, len(rows))
	copy(dup, rows)
	return dup
}
