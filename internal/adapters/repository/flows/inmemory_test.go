package flowrepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cltrudeau/flowr/internal/core/flow"
	"github.com/cltrudeau/flowr/internal/core/rule"
)

func makeFlow(t *testing.T, withRoot bool) *flow.Flow {
	t.Helper()
	reg := rule.NewRegistry()
	root, err := reg.Define("A", []string{"B"}, false, rule.Hooks{})
	require.NoError(t, err)
	_, err = reg.Define("B", nil, false, rule.Hooks{})
	require.NoError(t, err)
	require.NoError(t, reg.Finalize())
	rs, err := rule.NewSets().New("pair", root, reg)
	require.NoError(t, err)

	f := flow.New(rs)
	a, err := f.AddNode(root, withRoot)
	require.NoError(t, err)
	b, _ := rs.Registry().Node("B")
	n, err := f.AddNode(b, false)
	require.NoError(t, err)
	require.NoError(t, f.AddEdge(a, n))
	return f
}

func TestInMemoryFlowRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryFlowRepository()

	t.Run("save and get", func(t *testing.T) {
		f := makeFlow(t, true)
		require.NoError(t, repo.Save(ctx, f))

		got, err := repo.Get(ctx, f.ID())
		require.NoError(t, err)
		assert.Same(t, f, got)
	})

	t.Run("get unknown ID", func(t *testing.T) {
		_, err := repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrFlowNotFound)
	})

	t.Run("invalid flow is rejected", func(t *testing.T) {
		bad := makeFlow(t, false) // no start node
		err := repo.Save(ctx, bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no_roots")
	})

	t.Run("list", func(t *testing.T) {
		other := makeFlow(t, true)
		require.NoError(t, repo.Save(ctx, other))

		flows, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Len(t, flows, 2)
	})
}
