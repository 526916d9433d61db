package state

import (
	"fmt"
	"time"

	"github.com/cltrudeau/flowr/internal/core/flow"
)

// RestoredEntry is one persisted history record.
type RestoredEntry struct {
	NodeID string
	Kind   HistoryKind
	At     time.Time
}

// Restored carries the persisted form of a traversal.
type Restored struct {
	ID        string
	Positions []string
	// Activated maps a fork position's node ID to the IDs of children
	// already advanced to in the current fork round.
	Activated map[string][]string
	History   []RestoredEntry
}

// Restore rehydrates a traversal against f without firing any hooks. The
// flow is frozen as a side effect, since a persisted state implies execution
// already began. Unknown node IDs are reported at load time.
func Restore(f *flow.Flow, rec Restored, opts ...Option) (*State, error) {
	s := &State{
		id:        rec.ID,
		flow:      f,
		activated: make(map[*flow.Node]map[*flow.Node]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	lookup := func(id string) (*flow.Node, error) {
		n, ok := f.Node(id)
		if !ok {
			return nil, fmt.Errorf("%w: %q", flow.ErrUnknownNodeID, id)
		}
		return n, nil
	}

	for _, id := range rec.Positions {
		n, err := lookup(id)
		if err != nil {
			return nil, err
		}
		s.positions = append(s.positions, n)
	}

	for posID, childIDs := range rec.Activated {
		pos, err := lookup(posID)
		if err != nil {
			return nil, err
		}
		act := make(map[*flow.Node]bool, len(childIDs))
		for _, cid := range childIDs {
			c, err := lookup(cid)
			if err != nil {
				return nil, err
			}
			act[c] = true
		}
		s.activated[pos] = act
	}

	for _, e := range rec.History {
		n, err := lookup(e.NodeID)
		if err != nil {
			return nil, err
		}
		s.history = append(s.history, HistoryEntry{Node: n, Kind: e.Kind, At: e.At})
	}

	f.Freeze()
	return s, nil
}

// Export returns the persisted form of the traversal: positions, fork
// bookkeeping, and history as plain records keyed by node ID.
func (s *State) Export() Restored {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := Restored{ID: s.id}
	for _, p := range s.positions {
		rec.Positions = append(rec.Positions, p.ID())
	}
	if len(s.activated) > 0 {
		rec.Activated = make(map[string][]string, len(s.activated))
		for pos, act := range s.activated {
			ids := make([]string, 0, len(act))
			for c := range act {
				ids = append(ids, c.ID())
			}
			rec.Activated[pos.ID()] = ids
		}
	}
	for _, h := range s.history {
		rec.History = append(rec.History, RestoredEntry{
			NodeID: h.Node.ID(),
			Kind:   h.Kind,
			At:     h.At,
		})
	}
	return rec
}
