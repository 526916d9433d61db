// Package memory provides an in-memory snapshot store, suitable for tests
// and single-process deployments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cltrudeau/flowr/internal/core/snapshot"
	"github.com/cltrudeau/flowr/internal/infrastructure/metrics"
	"github.com/cltrudeau/flowr/pkg/serialization"
)

// SnapshotStore implements snapshot.Store over a mutex-guarded map. Entries
// are held in serialized form so Load always returns an independent copy;
// callers can never mutate a stored snapshot through an alias.
type SnapshotStore struct {
	mu         sync.RWMutex
	entries    map[string][]byte
	order      []string // insertion order for deterministic List
	serializer *serialization.Serializer
}

// NewSnapshotStore creates an in-memory store. A nil serializer defaults to
// msgpack + zstd.
func NewSnapshotStore(s *serialization.Serializer) *SnapshotStore {
	if s == nil {
		s = serialization.Default()
	}
	return &SnapshotStore{
		entries:    make(map[string][]byte),
		serializer: s,
	}
}

// Save stores a snapshot, replacing any prior snapshot with the same ID.
func (st *SnapshotStore) Save(_ context.Context, snap *snapshot.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}
	data, err := st.serializer.Marshal(snap)
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if _, exists := st.entries[snap.ID]; !exists {
		st.order = append(st.order, snap.ID)
	}
	st.entries[snap.ID] = data

	metrics.SnapshotSaved("memory")
	return nil
}

// Load retrieves a snapshot by ID.
func (st *SnapshotStore) Load(_ context.Context, id string) (*snapshot.Snapshot, error) {
	st.mu.RLock()
	data, ok := st.entries[id]
	st.mu.RUnlock()
	if !ok {
		return nil, snapshot.ErrSnapshotNotFound
	}

	var snap snapshot.Snapshot
	if err := st.serializer.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("deserialize snapshot: %w", err)
	}
	metrics.SnapshotLoaded("memory")
	return &snap, nil
}

// List returns snapshots matching the filter in insertion order.
func (st *SnapshotStore) List(_ context.Context, filter snapshot.Filter) ([]*snapshot.Snapshot, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	st.mu.RLock()
	ids := make([]string, len(st.order))
	copy(ids, st.order)
	raw := make(map[string][]byte, len(st.entries))
	for id, data := range st.entries {
		raw[id] = data
	}
	st.mu.RUnlock()

	var matched []*snapshot.Snapshot
	for _, id := range ids {
		data, ok := raw[id]
		if !ok {
			continue
		}
		var snap snapshot.Snapshot
		if err := st.serializer.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("deserialize snapshot %q: %w", id, err)
		}
		if filter.FlowID != "" && snap.FlowID != filter.FlowID {
			continue
		}
		if filter.StateID != "" && snap.StateID != filter.StateID {
			continue
		}
		if filter.Since != nil && snap.Taken.Before(*filter.Since) {
			continue
		}
		matched = append(matched, &snap)
	}

	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Taken.Before(matched[j].Taken) })

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			return nil, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Delete removes a snapshot by ID.
func (st *SnapshotStore) Delete(_ context.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.entries[id]; !ok {
		return snapshot.ErrSnapshotNotFound
	}
	delete(st.entries, id)
	for i, existing := range st.order {
		if existing == id {
			st.order = append(st.order[:i], st.order[i+1:]...)
			break
		}
	}
	return nil
}
