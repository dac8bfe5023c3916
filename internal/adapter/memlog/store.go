// Package memlog keeps the most recent ingestion runs in memory. It backs
// the run ledger when no database is configured.
package memlog

import (
	"context"
	"sync"

	"github.com/Strob0t/ganttboard/internal/domain/ingest"
)

// Store is a fixed-size ring of runs.
type Store struct {
	mu   sync.Mutex
	runs []ingest.Run
	next int
	full bool
}

// New creates a store holding at most capacity runs.
func New(capacity int) *Store {
	if capacity < 1 {
		capacity = 1
	}
	return &Store{runs: make([]ingest.Run, capacity)}
}

// Record appends a run, evicting the oldest when full.
func (s *Store) Record(_ context.Context, run *ingest.Run) error {
	if err := run.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[s.next] = *run
	s.next = (s.next + 1) % len(s.runs)
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// Recent returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) Recent(_ context.Context, limit int) ([]ingest.Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.next
	if s.full {
		n = len(s.runs)
	}
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]ingest.Run, 0, limit)
	for i := range limit {
		idx := (s.next - 1 - i + len(s.runs)) % len(s.runs)
		out = append(out, s.runs[idx])
	}
	return out, nil
}
