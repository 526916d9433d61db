package flow

import (
	"fmt"

	"github.com/cltrudeau/flowr/internal/core/graphutil"
)

// ViolationKind classifies a validation failure.
type ViolationKind string

const (
	// ViolationIllegalEdge flags an edge with no matching rule declaration.
	ViolationIllegalEdge ViolationKind = "illegal_edge"
	// ViolationUnreachable flags a node no root can reach.
	ViolationUnreachable ViolationKind = "unreachable_node"
	// ViolationNoRoots flags a flow with no start node.
	ViolationNoRoots ViolationKind = "no_roots"
)

// Violation describes one way a flow fails validation.
type Violation struct {
	Kind   ViolationKind
	NodeID string
	Detail string
}

func (v Violation) String() string {
	if v.NodeID == "" {
		return fmt.Sprintf("%s: %s", v.Kind, v.Detail)
	}
	return fmt.Sprintf("%s at %s: %s", v.Kind, v.NodeID, v.Detail)
}

// Validate checks the whole flow: every edge must be allowed by the rule
// graph, the flow must have at least one root, and every node must be
// reachable from some root. A flow composed exclusively through AddNode and
// AddEdge validates cleanly, since those operations enforce the same rules;
// Validate matters for flows rebuilt from persisted records.
func (f *Flow) Validate() []Violation {
	f.mu.Lock()
	defer f.mu.Unlock()

	var violations []Violation

	var roots []*Node
	for _, n := range f.nodes {
		if n.isStart {
			roots = append(roots, n)
		}
	}
	if len(roots) == 0 {
		violations = append(violations, Violation{
			Kind:   ViolationNoRoots,
			Detail: "flow must have at least one start node",
		})
	}

	for _, n := range f.nodes {
		for _, c := range n.children {
			if !n.rule.AllowedChild(c.rule) {
				violations = append(violations, Violation{
					Kind:   ViolationIllegalEdge,
					NodeID: n.id,
					Detail: fmt.Sprintf("rule %q does not allow child %q",
						n.rule.Label(), c.rule.Label()),
				})
			}
		}
	}

	reachable := make(map[*Node]bool)
	for _, root := range roots {
		for n := range graphutil.ReachableSet(root, func(m *Node) []*Node { return m.children }) {
			reachable[n] = true
		}
	}
	for _, n := range f.nodes {
		if !reachable[n] {
			violations = append(violations, Violation{
				Kind:   ViolationUnreachable,
				NodeID: n.id,
				Detail: fmt.Sprintf("node %q (rule %q) is not reachable from any root",
					n.id, n.rule.Label()),
			})
		}
	}

	return violations
}
