package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cltrudeau/flowr/internal/core/flow"
	"github.com/cltrudeau/flowr/internal/core/rule"
	"github.com/cltrudeau/flowr/internal/core/snapshot"
	"github.com/cltrudeau/flowr/internal/core/state"
)

// fixtureRecord is the record form of the standard test graph.
func fixtureRecord() RuleSetRecord {
	return RuleSetRecord{
		Name: "stock",
		Root: "A",
		Rules: []RuleRecord{
			{Label: "A", Children: []string{"B", "C"}},
			{Label: "B"},
			{Label: "C", Children: []string{"D", "E"}, AllowsFork: true},
			{Label: "D"},
			{Label: "E", Children: []string{"A"}},
		},
	}
}

func loadFixture(t *testing.T) (*rule.Sets, *rule.RuleSet) {
	t.Helper()
	sets := rule.NewSets()
	rs, err := RuleSetFromRecord(sets, fixtureRecord(), nil)
	require.NoError(t, err)
	return sets, rs
}

func buildFlow(t *testing.T, rs *rule.RuleSet) (*flow.Flow, map[string]*flow.Node) {
	t.Helper()
	f := flow.New(rs)
	nodes := make(map[string]*flow.Node)
	for _, label := range []string{"A", "C", "D", "E"} {
		rn, ok := rs.Registry().Node(label)
		require.True(t, ok)
		n, err := f.AddNode(rn, label == "A")
		require.NoError(t, err)
		nodes[label] = n
	}
	require.NoError(t, f.AddEdge(nodes["A"], nodes["C"]))
	require.NoError(t, f.AddEdge(nodes["C"], nodes["D"]))
	require.NoError(t, f.AddEdge(nodes["C"], nodes["E"]))
	require.NoError(t, f.AddEdge(nodes["E"], nodes["A"]))
	return f, nodes
}

func TestRuleSetRecordRoundTrip(t *testing.T) {
	_, rs := loadFixture(t)

	rec := RuleSetToRecord(rs)
	assert.Equal(t, "stock", rec.Name)
	assert.Equal(t, "A", rec.Root)
	require.Len(t, rec.Rules, 5)
	// sorted by label
	assert.Equal(t, "A", rec.Rules[0].Label)
	assert.Equal(t, "E", rec.Rules[4].Label)

	var fork *RuleRecord
	for i := range rec.Rules {
		if rec.Rules[i].Label == "C" {
			fork = &rec.Rules[i]
		}
	}
	require.NotNil(t, fork)
	assert.True(t, fork.AllowsFork)
	assert.Equal(t, []string{"D", "E"}, fork.Children)
}

func TestRuleSetFromRecord(t *testing.T) {
	t.Run("hooks reattach by label", func(t *testing.T) {
		entered := false
		hooks := map[string]rule.Hooks{
			"A": {OnEnter: func(rule.Context) error { entered = true; return nil }},
		}
		sets := rule.NewSets()
		rs, err := RuleSetFromRecord(sets, fixtureRecord(), hooks)
		require.NoError(t, err)

		require.NoError(t, rs.Root().Enter(nil))
		assert.True(t, entered)
	})

	t.Run("invalid label is rejected before defining", func(t *testing.T) {
		rec := fixtureRecord()
		rec.Rules[1].Label = "not a label!"
		_, err := RuleSetFromRecord(rule.NewSets(), rec, nil)
		assert.Error(t, err)
	})

	t.Run("unknown root is rejected", func(t *testing.T) {
		rec := fixtureRecord()
		rec.Root = "ghost"
		_, err := RuleSetFromRecord(rule.NewSets(), rec, nil)
		assert.ErrorIs(t, err, rule.ErrUnknownChild)
	})

	t.Run("missing rules section is rejected", func(t *testing.T) {
		_, err := RuleSetFromRecord(rule.NewSets(), RuleSetRecord{Name: "x", Root: "A"}, nil)
		assert.Error(t, err)
	})
}

func TestFlowRecordRoundTrip(t *testing.T) {
	sets, rs := loadFixture(t)
	f, nodes := buildFlow(t, rs)

	rec := FlowToRecord(f)
	assert.Equal(t, f.ID(), rec.ID)
	assert.Equal(t, "stock", rec.RuleSet)
	assert.False(t, rec.Frozen)
	require.Len(t, rec.Nodes, 4)

	rebuilt, err := FlowFromRecord(sets, rec)
	require.NoError(t, err)
	assert.Equal(t, f.ID(), rebuilt.ID())
	assert.Empty(t, rebuilt.Validate())

	n, ok := rebuilt.Node(nodes["C"].ID())
	require.True(t, ok)
	assert.Equal(t, "C", n.Rule().Label())
	assert.Len(t, n.Children(), 2)
}

func TestFlowFromRecord_Errors(t *testing.T) {
	sets, rs := loadFixture(t)
	f, _ := buildFlow(t, rs)
	rec := FlowToRecord(f)

	t.Run("unknown rule set", func(t *testing.T) {
		bad := rec
		bad.RuleSet = "ghost"
		_, err := FlowFromRecord(sets, bad)
		assert.ErrorIs(t, err, rule.ErrUnknownSet)
	})

	t.Run("unknown rule label", func(t *testing.T) {
		bad := rec
		bad.Nodes = append([]FlowNodeRecord(nil), rec.Nodes...)
		bad.Nodes[0].Rule = "Z"
		_, err := FlowFromRecord(sets, bad)
		assert.ErrorIs(t, err, flow.ErrRuleNotInSet)
	})
}

func TestStateSnapshotRoundTrip(t *testing.T) {
	_, rs := loadFixture(t)
	f, nodes := buildFlow(t, rs)

	st, err := state.Start(f)
	require.NoError(t, err)
	require.NoError(t, st.Advance(nodes["A"], nodes["C"]))
	require.NoError(t, st.Advance(nodes["C"], nodes["D"]))

	snap := StateToSnapshot(st, "1")
	require.NoError(t, snap.Validate())
	assert.Equal(t, f.ID(), snap.FlowID)
	assert.Equal(t, st.ID(), snap.StateID)
	assert.Equal(t, "1", snap.Version)
	assert.Len(t, snap.History, 5)
	assert.Equal(t, snap.History[4].At, snap.Taken)

	restored, err := StateFromSnapshot(snap, f)
	require.NoError(t, err)
	assert.Equal(t, st.ID(), restored.ID())
	assert.ElementsMatch(t, st.Positions(), restored.Positions())

	t.Run("wrong flow is rejected", func(t *testing.T) {
		other := flow.New(rs)
		_, err := StateFromSnapshot(snap, other)
		assert.Error(t, err)
	})
}

func TestValidateRecord(t *testing.T) {
	tests := []struct {
		name    string
		rec     interface{}
		wantErr bool
	}{
		{"valid rule record", RuleRecord{Label: "review.approve"}, false},
		{"dashed label", RuleRecord{Label: "ship-it"}, false},
		{"empty label", RuleRecord{}, true},
		{"label with spaces", RuleRecord{Label: "no spaces"}, true},
		{"bad child label", RuleRecord{Label: "A", Children: []string{"!"}}, true},
		{"valid history entry", snapshot.HistoryRecord{NodeID: "n1", Kind: "enter"}, false},
		{"bad history kind", snapshot.HistoryRecord{NodeID: "n1", Kind: "wander"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecord(tt.rec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
