package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestore(t *testing.T) {
	rs := stockRuleSet(t)

	records := []RestoredNode{
		{ID: "n1", Rule: "A", Start: true, Children: []string{"n2"}},
		{ID: "n2", Rule: "C", Children: []string{"n3", "n4"}},
		{ID: "n3", Rule: "D"},
		{ID: "n4", Rule: "E", Children: []string{"n1"}},
	}

	t.Run("round trip", func(t *testing.T) {
		f, err := Restore(rs, "flow-1", false, records)
		require.NoError(t, err)

		assert.Equal(t, "flow-1", f.ID())
		assert.False(t, f.Frozen())
		assert.Len(t, f.Nodes(), 4)
		assert.Empty(t, f.Validate())

		n1, ok := f.Node("n1")
		require.True(t, ok)
		assert.True(t, n1.IsStart())
		assert.Equal(t, "A", n1.Rule().Label())

		n4, _ := f.Node("n4")
		assert.True(t, n4.HasChild(n1))
	})

	t.Run("sequence counter resumes past restored IDs", func(t *testing.T) {
		f, err := Restore(rs, "flow-2", false, records)
		require.NoError(t, err)

		fresh, err := f.AddNode(ruleNode(t, rs, "B"), false)
		require.NoError(t, err)
		assert.Equal(t, "n5", fresh.ID())
	})

	t.Run("frozen flag carries over", func(t *testing.T) {
		f, err := Restore(rs, "flow-3", true, records)
		require.NoError(t, err)
		assert.True(t, f.Frozen())
		_, err = f.AddNode(ruleNode(t, rs, "B"), false)
		assert.ErrorIs(t, err, ErrFrozen)
	})

	t.Run("empty ID gets a generated one", func(t *testing.T) {
		f, err := Restore(rs, "", false, records)
		require.NoError(t, err)
		assert.NotEmpty(t, f.ID())
	})

	t.Run("duplicate node ID", func(t *testing.T) {
		_, err := Restore(rs, "bad", false, []RestoredNode{
			{ID: "n1", Rule: "A", Start: true},
			{ID: "n1", Rule: "B"},
		})
		assert.ErrorIs(t, err, ErrDuplicateNodeID)
	})

	t.Run("unknown rule label", func(t *testing.T) {
		_, err := Restore(rs, "bad", false, []RestoredNode{
			{ID: "n1", Rule: "ghost", Start: true},
		})
		assert.ErrorIs(t, err, ErrRuleNotInSet)
	})

	t.Run("dangling child reference", func(t *testing.T) {
		_, err := Restore(rs, "bad", false, []RestoredNode{
			{ID: "n1", Rule: "A", Start: true, Children: []string{"n9"}},
		})
		assert.ErrorIs(t, err, ErrUnknownNodeID)
	})

	t.Run("corrupted edge legality is re-checked", func(t *testing.T) {
		_, err := Restore(rs, "bad", false, []RestoredNode{
			{ID: "n1", Rule: "A", Start: true, Children: []string{"n2"}},
			{ID: "n2", Rule: "D"},
		})
		assert.ErrorIs(t, err, ErrIllegalTransition)
	})
}
