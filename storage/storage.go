// Package storage persists session graphs between turns. The gateway
// hydrates a graph from the store before reasoning and saves it durably
// before a turn's response is written, so sessions survive restarts.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/graph"
)

// Store saves and loads whole session snapshots. Save replaces the
// session's stored facts; partial updates do not exist, matching the
// engine's no-partial-commit turn model.
type Store interface {
	Save(ctx context.Context, snap graph.Snapshot) error
	Load(ctx context.Context, sessionID string) (graph.Snapshot, error)
	Sessions(ctx context.Context) ([]string, error)
	Close() error
}

// MemoryStore is an in-process Store for tests and ephemeral runs.
type MemoryStore struct {
	mu    sync.RWMutex
	snaps map[string]graph.Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{snaps: make(map[string]graph.Snapshot)}
}

func (s *MemoryStore) Save(_ context.Context, snap graph.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	facts := make([]fact.Fact, len(snap.Facts))
	copy(facts, snap.Facts)
	snap.Facts = facts
	s.snaps[snap.SessionID] = snap
	return nil
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (graph.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snaps[sessionID]
	if !ok {
		return graph.Snapshot{}, errors.WrapInvalid(
			errors.Newf("%w: %s", errors.ErrSessionNotFound, sessionID),
			"MemoryStore", "Load", "find session")
	}
	facts := make([]fact.Fact, len(snap.Facts))
	copy(facts, snap.Facts)
	snap.Facts = facts
	return snap, nil
}

func (s *MemoryStore) Sessions(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.snaps))
	for id := range s.snaps {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Close() error { return nil }
