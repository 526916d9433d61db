// Package export renders rule graphs and flows as Cytoscape-style JSON for
// the visualization surface. It is strictly read-only: it walks the public
// accessors and cannot mutate engine state.
package export

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cltrudeau/flowr/internal/core/flow"
	"github.com/cltrudeau/flowr/internal/core/graphutil"
	"github.com/cltrudeau/flowr/internal/core/rule"
)

// nodeData and edgeData follow the Cytoscape elements JSON shape:
// {"nodes": [{"data": {...}}], "edges": [{"data": {...}}]}.
type nodeData struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
	Fork  bool   `json:"fork,omitempty"`
	Start bool   `json:"start,omitempty"`
}

type edgeData struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type element[T any] struct {
	Data T `json:"data"`
}

type document struct {
	Nodes []element[nodeData] `json:"nodes"`
	Edges []element[edgeData] `json:"edges"`
}

// RuleGraphJSON renders every rule reachable from the set's root, with one
// edge per declared parent->child relationship.
func RuleGraphJSON(rs *rule.RuleSet) ([]byte, error) {
	reachable := graphutil.ReachableSet(rs.Root(), func(n *rule.Node) []*rule.Node {
		return n.Children()
	})

	nodes := make([]*rule.Node, 0, len(reachable))
	for n := range reachable {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Label() < nodes[j].Label() })

	doc := document{Nodes: []element[nodeData]{}, Edges: []element[edgeData]{}}
	for _, n := range nodes {
		doc.Nodes = append(doc.Nodes, element[nodeData]{Data: nodeData{
			ID:    n.Label(),
			Fork:  n.AllowsFork(),
			Start: n == rs.Root(),
		}})
		for _, c := range n.Children() {
			doc.Edges = append(doc.Edges, element[edgeData]{Data: edgeData{
				ID:     fmt.Sprintf("%s_%s", n.Label(), c.Label()),
				Source: n.Label(),
				Target: c.Label(),
			}})
		}
	}
	return json.Marshal(doc)
}

// FlowJSON renders a flow's positions and edges. Node IDs are the flow-node
// IDs; the rule label rides along for display.
func FlowJSON(f *flow.Flow) ([]byte, error) {
	doc := document{Nodes: []element[nodeData]{}, Edges: []element[edgeData]{}}
	for _, n := range f.Nodes() {
		doc.Nodes = append(doc.Nodes, element[nodeData]{Data: nodeData{
			ID:    n.ID(),
			Label: n.Rule().Label(),
			Fork:  n.Rule().AllowsFork(),
			Start: n.IsStart(),
		}})
		for _, c := range n.Children() {
			doc.Edges = append(doc.Edges, element[edgeData]{Data: edgeData{
				ID:     fmt.Sprintf("%s_%s", n.ID(), c.ID()),
				Source: n.ID(),
				Target: c.ID(),
			}})
		}
	}
	return json.Marshal(doc)
}
