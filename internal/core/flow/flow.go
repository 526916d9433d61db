package flow

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cltrudeau/flowr/internal/core/graphutil"
	"github.com/cltrudeau/flowr/internal/core/rule"
)

// Flow is a user-composed directed graph whose edges are constrained by a
// rule set. It owns its nodes exclusively. The frozen flag and the node and
// edge sets are guarded by one mutex so that no mutation can race the freeze:
// once Freeze succeeds, every later AddNode/AddEdge fails with ErrFrozen.
type Flow struct {
	mu      sync.Mutex
	id      string
	ruleSet *rule.RuleSet
	nodes   []*Node
	nextSeq int
	frozen  bool
}

// New returns an empty, unfrozen flow bound to rs.
func New(rs *rule.RuleSet) *Flow {
	return &Flow{id: uuid.NewString(), ruleSet: rs, nextSeq: 1}
}

// ID returns the flow's unique identity.
func (f *Flow) ID() string { return f.id }

// RuleSet returns the rule set governing this flow.
func (f *Flow) RuleSet() *rule.RuleSet { return f.ruleSet }

// Frozen reports whether the flow has been frozen by a traversal.
func (f *Flow) Frozen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frozen
}

// InUse is an alias for Frozen: a flow freezes exactly when the first
// traversal starts against it.
func (f *Flow) InUse() bool { return f.Frozen() }

// Freeze makes the flow immutable. The transition is one-way; calling Freeze
// on a frozen flow is a no-op.
func (f *Flow) Freeze() {
	f.mu.Lock()
	f.frozen = true
	f.mu.Unlock()
}

// AddNode adds a position instantiating rn. Fails with ErrFrozen after the
// flow froze and with ErrRuleNotInSet when rn is not reachable within the
// governing rule set.
func (f *Flow) AddNode(rn *rule.Node, asRoot bool) (*Node, error) {
	if !f.ruleSet.Contains(rn) {
		return nil, fmt.Errorf("%w: %q", ErrRuleNotInSet, rn.Label())
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.frozen {
		return nil, ErrFrozen
	}

	n := &Node{
		id:      fmt.Sprintf("n%d", f.nextSeq),
		rule:    rn,
		isStart: asRoot,
		flow:    f,
	}
	f.nextSeq++
	f.nodes = append(f.nodes, n)
	return n, nil
}

// AddEdge connects parent to child. The edge must correspond to a declared
// parent->child relationship in the rule graph; self-edges and edges
// re-entering an ancestor are legal whenever the rule graph carries the
// matching cycle. Adding an existing edge is a no-op.
func (f *Flow) AddEdge(parent, child *Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.frozen {
		return ErrFrozen
	}
	if parent.flow != f || child.flow != f {
		return ErrNodeNotInFlow
	}
	if !parent.rule.AllowedChild(child.rule) {
		return fmt.Errorf("%w: %q -> %q", ErrIllegalTransition,
			parent.rule.Label(), child.rule.Label())
	}
	if parent.hasChildLocked(child) {
		return nil
	}

	parent.children = append(parent.children, child)
	return nil
}

// RemoveNode deletes a node from the flow. Only nodes whose removal leaves
// the graph connected may be removed: childless nodes, or nodes whose every
// child is also one of its ancestors (pure cycle returners).
func (f *Flow) RemoveNode(n *Node) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.frozen {
		return ErrFrozen
	}
	if n.flow != f {
		return ErrNodeNotInFlow
	}
	if !f.canRemoveLocked(n) {
		return ErrCannotRemove
	}

	for _, other := range f.nodes {
		for i, c := range other.children {
			if c == n {
				other.children = append(other.children[:i], other.children[i+1:]...)
				break
			}
		}
	}
	for i, node := range f.nodes {
		if node == n {
			f.nodes = append(f.nodes[:i], f.nodes[i+1:]...)
			break
		}
	}
	n.flow = nil
	return nil
}

// CanRemove reports whether n may be removed without splitting the flow.
func (f *Flow) CanRemove(n *Node) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return n.flow == f && f.canRemoveLocked(n)
}

func (f *Flow) canRemoveLocked(n *Node) bool {
	if len(n.children) == 0 {
		return true
	}
	ancestors := graphutil.Ancestors(n, f.parentsLocked)
	for _, c := range n.children {
		if !ancestors[c] {
			return false
		}
	}
	return true
}

// parentsLocked returns the direct parents of n. Must be called with f.mu
// held.
func (f *Flow) parentsLocked(n *Node) []*Node {
	var parents []*Node
	for _, candidate := range f.nodes {
		for _, c := range candidate.children {
			if c == n {
				parents = append(parents, candidate)
				break
			}
		}
	}
	return parents
}

// Parents returns the direct parents of n.
func (f *Flow) Parents(n *Node) []*Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.parentsLocked(n)
}

// Ancestors returns every node from which n can be reached.
func (f *Flow) Ancestors(n *Node) []*Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := graphutil.Ancestors(n, f.parentsLocked)
	return f.collectLocked(set)
}

// Descendants returns every node reachable from n.
func (f *Flow) Descendants(n *Node) []*Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	set := graphutil.Descendants(n, func(m *Node) []*Node { return m.children })
	return f.collectLocked(set)
}

// collectLocked returns the members of set in flow insertion order so
// callers get deterministic results.
func (f *Flow) collectLocked(set map[*Node]bool) []*Node {
	var out []*Node
	for _, n := range f.nodes {
		if set[n] {
			out = append(out, n)
		}
	}
	return out
}

// Nodes returns every node in the flow in insertion order.
func (f *Flow) Nodes() []*Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Node, len(f.nodes))
	copy(out, f.nodes)
	return out
}

// Roots returns the nodes flagged as start positions, in insertion order.
func (f *Flow) Roots() []*Node {
	f.mu.Lock()
	defer f.mu.Unlock()
	var roots []*Node
	for _, n := range f.nodes {
		if n.isStart {
			roots = append(roots, n)
		}
	}
	return roots
}

// Node looks a node up by its flow-scoped ID.
func (f *Flow) Node(id string) (*Node, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.nodes {
		if n.id == id {
			return n, true
		}
	}
	return nil, false
}
