// Package service contains application services.
package service

import (
	"sync/atomic"

	"github.com/Strob0t/ganttboard/internal/domain/timeline"
)

// SnapshotStore holds the current snapshot. Readers load the pointer once
// per operation and never see a partially built snapshot.
type SnapshotStore struct {
	p atomic.Pointer[timeline.Snapshot]
}

// NewSnapshotStore creates a store holding initial.
func NewSnapshotStore(initial *timeline.Snapshot) *SnapshotStore {
	s := &SnapshotStore{}
	s.p.Store(initial)
	return s
}

// Load returns the current snapshot.
func (s *SnapshotStore) Load() *timeline.Snapshot { return s.p.Load() }

// Swap installs next and returns the snapshot it replaced.
func (s *SnapshotStore) Swap(next *timeline.Snapshot) *timeline.Snapshot { return s.p.Swap(next) }
