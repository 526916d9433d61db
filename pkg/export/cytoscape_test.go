package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cltrudeau/flowr/internal/core/flow"
	"github.com/cltrudeau/flowr/internal/core/rule"
)

type doc struct {
	Nodes []struct {
		Data struct {
			ID    string `json:"id"`
			Label string `json:"label"`
			Fork  bool   `json:"fork"`
			Start bool   `json:"start"`
		} `json:"data"`
	} `json:"nodes"`
	Edges []struct {
		Data struct {
			ID     string `json:"id"`
			Source string `json:"source"`
			Target string `json:"target"`
		} `json:"data"`
	} `json:"edges"`
}

func fixture(t *testing.T) (*rule.RuleSet, *flow.Flow) {
	t.Helper()
	reg := rule.NewRegistry()
	root, err := reg.Define("A", []string{"B", "C"}, false, rule.Hooks{})
	require.NoError(t, err)
	_, err = reg.Define("B", nil, false, rule.Hooks{})
	require.NoError(t, err)
	_, err = reg.Define("C", []string{"A"}, true, rule.Hooks{})
	require.NoError(t, err)
	require.NoError(t, reg.Finalize())
	rs, err := rule.NewSets().New("tri", root, reg)
	require.NoError(t, err)

	f := flow.New(rs)
	b, _ := reg.Node("B")
	c, _ := reg.Node("C")
	na, err := f.AddNode(root, true)
	require.NoError(t, err)
	nb, err := f.AddNode(b, false)
	require.NoError(t, err)
	nc, err := f.AddNode(c, false)
	require.NoError(t, err)
	require.NoError(t, f.AddEdge(na, nb))
	require.NoError(t, f.AddEdge(na, nc))
	require.NoError(t, f.AddEdge(nc, na))
	return rs, f
}

func TestRuleGraphJSON(t *testing.T) {
	rs, _ := fixture(t)

	data, err := RuleGraphJSON(rs)
	require.NoError(t, err)

	var got doc
	require.NoError(t, json.Unmarshal(data, &got))

	require.Len(t, got.Nodes, 3)
	// nodes sorted by label
	assert.Equal(t, "A", got.Nodes[0].Data.ID)
	assert.True(t, got.Nodes[0].Data.Start)
	assert.Equal(t, "C", got.Nodes[2].Data.ID)
	assert.True(t, got.Nodes[2].Data.Fork)

	require.Len(t, got.Edges, 3)
	edgeIDs := make([]string, 0, 3)
	for _, e := range got.Edges {
		edgeIDs = append(edgeIDs, e.Data.ID)
	}
	assert.ElementsMatch(t, []string{"A_B", "A_C", "C_A"}, edgeIDs)
}

func TestFlowJSON(t *testing.T) {
	_, f := fixture(t)

	data, err := FlowJSON(f)
	require.NoError(t, err)

	var got doc
	require.NoError(t, json.Unmarshal(data, &got))

	require.Len(t, got.Nodes, 3)
	assert.Equal(t, "n1", got.Nodes[0].Data.ID)
	assert.Equal(t, "A", got.Nodes[0].Data.Label)
	assert.True(t, got.Nodes[0].Data.Start)

	require.Len(t, got.Edges, 3)
	srcTargets := make(map[string]string, 3)
	for _, e := range got.Edges {
		srcTargets[e.Data.ID] = e.Data.Source + ">" + e.Data.Target
	}
	assert.Equal(t, "n1>n2", srcTargets["n1_n2"])
	assert.Equal(t, "n3>n1", srcTargets["n3_n1"])
}

func TestFlowJSON_EmptyFlow(t *testing.T) {
	rs, _ := fixture(t)
	f := flow.New(rs)

	data, err := FlowJSON(f)
	require.NoError(t, err)

	var got doc
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Empty(t, got.Nodes)
	assert.Empty(t, got.Edges)
}
