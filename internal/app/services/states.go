// Package services wires the engine's live objects to the persistence
// adapters: a registry of running traversals and the snapshot round-trip.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/cltrudeau/flowr/internal/app/dto"
	"github.com/cltrudeau/flowr/internal/core/flow"
	"github.com/cltrudeau/flowr/internal/core/snapshot"
	"github.com/cltrudeau/flowr/internal/core/state"
)

// SnapshotVersion tags snapshots written by this build so future readers can
// adapt if the payload layout changes.
const SnapshotVersion = "1"

// StateService tracks running traversals by ID and moves them to and from a
// snapshot store. Access to the registry is guarded by a RWMutex; mutations
// of an individual State are serialized by the State itself.
type StateService struct {
	mu     sync.RWMutex
	states map[string]*state.State
	store  snapshot.Store
}

// NewStateService creates a state service over the given snapshot store. A
// nil store is legal; snapshot operations then fail with a clear error.
func NewStateService(store snapshot.Store) *StateService {
	return &StateService{
		states: make(map[string]*state.State),
		store:  store,
	}
}

// Start begins a traversal of f, registers it, and returns it.
func (s *StateService) Start(f *flow.Flow, opts ...state.Option) (*state.State, error) {
	st, err := state.Start(f, opts...)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.states[st.ID()] = st
	s.mu.Unlock()
	return st, nil
}

// Get returns a registered traversal by ID.
func (s *StateService) Get(id string) (*state.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[id]
	if !ok {
		return nil, fmt.Errorf("state not found: %q", id)
	}
	return st, nil
}

// Remove drops a traversal from the registry. The state stays usable by
// anyone still holding it.
func (s *StateService) Remove(id string) {
	s.mu.Lock()
	delete(s.states, id)
	s.mu.Unlock()
}

// Active returns the number of registered traversals.
func (s *StateService) Active() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// Snapshot captures a registered traversal and persists it.
func (s *StateService) Snapshot(ctx context.Context, stateID string) (*snapshot.Snapshot, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no snapshot store configured")
	}
	st, err := s.Get(stateID)
	if err != nil {
		return nil, err
	}

	snap := dto.StateToSnapshot(st, SnapshotVersion)
	if err := s.store.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	return snap, nil
}

// Resume loads a snapshot, rehydrates the traversal against f, and registers
// it. No hooks fire during rehydration.
func (s *StateService) Resume(ctx context.Context, snapshotID string, f *flow.Flow, opts ...state.Option) (*state.State, error) {
	if s.store == nil {
		return nil, fmt.Errorf("no snapshot store configured")
	}
	snap, err := s.store.Load(ctx, snapshotID)
	if err != nil {
		return nil, err
	}

	st, err := dto.StateFromSnapshot(snap, f, opts...)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.states[st.ID()] = st
	s.mu.Unlock()
	return st, nil
}
