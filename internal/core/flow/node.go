package flow

import "github.com/cltrudeau/flowr/internal/core/rule"

// Node is a position in a flow graph. It instantiates exactly one rule; the
// same rule may appear at several positions in one flow. Children are kept in
// insertion order.
type Node struct {
	id       string
	rule     *rule.Node
	children []*Node
	isStart  bool
	flow     *Flow
}

// ID returns the node's flow-scoped identifier.
func (n *Node) ID() string { return n.id }

// Rule returns the rule this position instantiates.
func (n *Node) Rule() *rule.Node { return n.rule }

// IsStart reports whether the node is one of the flow's roots.
func (n *Node) IsStart() bool { return n.isStart }

// Children returns the node's successors in insertion order. The returned
// slice must not be modified; it is safe to read once the flow is frozen.
// A node that has been removed from its flow has no successors.
func (n *Node) Children() []*Node {
	f := n.flow
	if f == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// HasChild reports whether c is a direct successor of n.
func (n *Node) HasChild(c *Node) bool {
	f := n.flow
	if f == nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return n.hasChildLocked(c)
}

func (n *Node) hasChildLocked(c *Node) bool {
	for _, child := range n.children {
		if child == c {
			return true
		}
	}
	return false
}

// AllowedChildRules returns the rules that may legally be instantiated as
// children of this position, straight from the rule graph.
func (n *Node) AllowedChildRules() []*rule.Node {
	return n.rule.Children()
}
