package rule

// Context is handed to rule hooks on every transition. It is implemented by
// the traversal engine; the indirection keeps this package free of any
// dependency on the flow or state packages.
type Context interface {
	// RuleLabel is the label of the rule at the position firing the hook.
	RuleLabel() string
	// PositionID identifies the flow node occupying the position.
	PositionID() string
	// StateID identifies the traversal that owns the position.
	StateID() string
}

// Hooks carries the behavior attached to a rule. Either function may be nil,
// in which case the transition proceeds silently. A non-nil error aborts the
// transition that triggered the hook.
type Hooks struct {
	OnEnter func(Context) error
	OnExit  func(Context) error
}

// Node is a single rule in the rule graph. Nodes are created through a
// Registry and are immutable once the registry is finalized; after that they
// are safe for unsynchronized concurrent reads.
type Node struct {
	label      string
	children   []*Node
	allowsFork bool
	hooks      Hooks
}

// Label returns the identity of the rule.
func (n *Node) Label() string { return n.label }

// AllowsFork reports whether more than one child position may be
// simultaneously active below this rule.
func (n *Node) AllowsFork() bool { return n.allowsFork }

// Children returns the rules legally reachable as direct successors. The
// returned slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// AllowedChild reports whether c was explicitly declared as a child of n.
// Reachability is never implied by transitivity.
func (n *Node) AllowedChild(c *Node) bool {
	for _, child := range n.children {
		if child == c {
			return true
		}
	}
	return false
}

// Hooks returns the enter/exit behavior attached to the rule.
func (n *Node) Hooks() Hooks { return n.hooks }

// Enter fires the OnEnter hook if one is attached.
func (n *Node) Enter(ctx Context) error {
	if n.hooks.OnEnter == nil {
		return nil
	}
	return n.hooks.OnEnter(ctx)
}

// Exit fires the OnExit hook if one is attached.
func (n *Node) Exit(ctx Context) error {
	if n.hooks.OnExit == nil {
		return nil
	}
	return n.hooks.OnExit(ctx)
}

// reachable walks the children relation from root looking for target,
// guarding against cycles with a visited set.
func reachable(root, target *Node) bool {
	visited := make(map[*Node]bool)
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		if n == target {
			return true
		}
		visited[n] = true
		for _, c := range n.children {
			if !visited[c] && walk(c) {
				return true
			}
		}
		return false
	}
	return walk(root)
}
