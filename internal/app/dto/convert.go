package dto

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/cltrudeau/flowr/internal/core/flow"
	"github.com/cltrudeau/flowr/internal/core/graphutil"
	"github.com/cltrudeau/flowr/internal/core/rule"
	"github.com/cltrudeau/flowr/internal/core/snapshot"
	"github.com/cltrudeau/flowr/internal/core/state"
)

// RuleSetToRecord exports a rule set as a plain record: every rule reachable
// from the root, sorted by label for a stable representation.
func RuleSetToRecord(rs *rule.RuleSet) RuleSetRecord {
	reachable := graphutil.ReachableSet(rs.Root(), func(n *rule.Node) []*rule.Node {
		return n.Children()
	})

	nodes := make([]*rule.Node, 0, len(reachable))
	for n := range reachable {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Label() < nodes[j].Label() })

	rec := RuleSetRecord{Name: rs.Name(), Root: rs.Root().Label()}
	for _, n := range nodes {
		rr := RuleRecord{Label: n.Label(), AllowsFork: n.AllowsFork()}
		for _, c := range n.Children() {
			rr.Children = append(rr.Children, c.Label())
		}
		rec.Rules = append(rec.Rules, rr)
	}
	return rec
}

// RuleSetFromRecord rebuilds a rule set from its record. Hook behavior is
// reattached by label from hooks; labels without an entry get no-op hooks.
// The record is validated before any rule is defined.
func RuleSetFromRecord(sets *rule.Sets, rec RuleSetRecord, hooks map[string]rule.Hooks) (*rule.RuleSet, error) {
	if err := ValidateRecord(rec); err != nil {
		return nil, err
	}

	reg := rule.NewRegistry()
	for _, rr := range rec.Rules {
		if _, err := reg.Define(rr.Label, rr.Children, rr.AllowsFork, hooks[rr.Label]); err != nil {
			return nil, err
		}
	}
	if err := reg.Finalize(); err != nil {
		return nil, err
	}

	root, ok := reg.Node(rec.Root)
	if !ok {
		return nil, fmt.Errorf("%w: root %q", rule.ErrUnknownChild, rec.Root)
	}
	return sets.New(rec.Name, root, reg)
}

// FlowToRecord exports a flow as a plain record.
func FlowToRecord(f *flow.Flow) FlowRecord {
	rec := FlowRecord{
		ID:      f.ID(),
		RuleSet: f.RuleSet().Name(),
		Frozen:  f.Frozen(),
	}
	for _, n := range f.Nodes() {
		nr := FlowNodeRecord{
			ID:    n.ID(),
			Rule:  n.Rule().Label(),
			Start: n.IsStart(),
		}
		for _, c := range n.Children() {
			nr.Children = append(nr.Children, c.ID())
		}
		rec.Nodes = append(rec.Nodes, nr)
	}
	return rec
}

// FlowFromRecord rebuilds a flow from its record against the named rule set.
// Unknown rules or illegal edges are reported here, at load time.
func FlowFromRecord(sets *rule.Sets, rec FlowRecord) (*flow.Flow, error) {
	if err := ValidateRecord(rec); err != nil {
		return nil, err
	}

	rs, err := sets.Get(rec.RuleSet)
	if err != nil {
		return nil, err
	}

	nodes := make([]flow.RestoredNode, 0, len(rec.Nodes))
	for _, nr := range rec.Nodes {
		nodes = append(nodes, flow.RestoredNode{
			ID:       nr.ID,
			Rule:     nr.Rule,
			Start:    nr.Start,
			Children: nr.Children,
		})
	}
	return flow.Restore(rs, rec.ID, rec.Frozen, nodes)
}

// StateToSnapshot captures a traversal as a snapshot ready for a store.
func StateToSnapshot(st *state.State, version string) *snapshot.Snapshot {
	rec := st.Export()
	snap := &snapshot.Snapshot{
		ID:        uuid.NewString(),
		FlowID:    st.Flow().ID(),
		StateID:   rec.ID,
		Positions: rec.Positions,
		Activated: rec.Activated,
		Version:   version,
	}
	for _, e := range rec.History {
		snap.History = append(snap.History, snapshot.HistoryRecord{
			NodeID: e.NodeID,
			Kind:   string(e.Kind),
			At:     e.At,
		})
	}
	if len(rec.History) > 0 {
		snap.Taken = rec.History[len(rec.History)-1].At
	}
	return snap
}

// StateFromSnapshot rehydrates a traversal from a snapshot against f, which
// must be the flow the snapshot was taken from. No hooks fire during
// rehydration.
func StateFromSnapshot(snap *snapshot.Snapshot, f *flow.Flow, opts ...state.Option) (*state.State, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if snap.FlowID != f.ID() {
		return nil, fmt.Errorf("snapshot belongs to flow %q, not %q", snap.FlowID, f.ID())
	}

	rec := state.Restored{
		ID:        snap.StateID,
		Positions: snap.Positions,
		Activated: snap.Activated,
	}
	for _, h := range snap.History {
		rec.History = append(rec.History, state.RestoredEntry{
			NodeID: h.NodeID,
			Kind:   state.HistoryKind(h.Kind),
			At:     h.At,
		})
	}
	return state.Restore(f, rec, opts...)
}
