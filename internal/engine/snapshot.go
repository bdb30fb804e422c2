package engine

import (
	"sync"
	"time"
)

// SnapshotStore keeps the latest raw snapshot per location in memory.
// Writers replace, readers copy the pointer; snapshots themselves are
// treated as immutable after Put.
type SnapshotStore struct {
	mu     sync.RWMutex
	byLoc  map[int64]Snapshot
	maxAge time.Duration
}

// NewSnapshotStore builds a store that considers snapshots older than
// maxAge stale. maxAge <= 0 disables staleness pruning.
func NewSnapshotStore(maxAge time.Duration) *SnapshotStore {
	return &SnapshotStore{
		byLoc:  make(map[int64]Snapshot),
		maxAge: maxAge,
	}
}

// Put replaces the stored snapshot for its location.
func (s *SnapshotStore) Put(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byLoc[snap.LocationID] = snap
}

// Get returns the latest snapshot for a location, or false when none is
// stored.
func (s *SnapshotStore) Get(locationID int64) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.byLoc[locationID]
	return snap, ok
}

// All returns a copy of every stored snapshot.
func (s *SnapshotStore) All() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Snapshot, 0, len(s.byLoc))
	for _, snap := range s.byLoc {
		out = append(out, snap)
	}
	return out
}

// Prune removes snapshots older than the store's max age and returns
// how many were dropped.
func (s *SnapshotStore) Prune(now time.Time) int {
	if s.maxAge <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.maxAge)
	dropped := 0
	for loc, snap := range s.byLoc {
		if snap.TakenAt.Before(cutoff) {
			delete(s.byLoc, loc)
			dropped++
		}
	}
	return dropped
}
