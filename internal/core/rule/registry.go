package rule

import (
	"fmt"
	"sync"
)

// Registry collects rule definitions and resolves them into an immutable rule
// graph. Rules may reference children that have not been defined yet; the
// references are bound by label when Finalize is called, which makes mutual
// and self cycles straightforward to declare.
//
// The lifecycle is build-then-freeze: Define any number of rules, call
// Finalize once, then hand nodes to rule sets. Define fails after Finalize.
type Registry struct {
	mu        sync.Mutex
	nodes     map[string]*Node
	pending   map[string][]string // label -> declared child labels
	finalized bool
}

// NewRegistry returns an empty, unfinalized registry.
func NewRegistry() *Registry {
	return &Registry{
		nodes:   make(map[string]*Node),
		pending: make(map[string][]string),
	}
}

// Define registers a rule under label with the given child labels. Children
// do not need to be defined yet; they are resolved at Finalize. Fails with
// ErrDuplicateLabel if the label is taken and ErrFinalized if the registry
// has been sealed.
func (r *Registry) Define(label string, children []string, allowsFork bool, hooks Hooks) (*Node, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return nil, ErrFinalized
	}
	if _, exists := r.nodes[label]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateLabel, label)
	}

	n := &Node{
		label:      label,
		allowsFork: allowsFork,
		hooks:      hooks,
	}
	r.nodes[label] = n
	r.pending[label] = append([]string(nil), children...)
	return n, nil
}

// Finalize resolves every declared child label to its node and seals the
// registry. Fails with ErrUnknownChild naming the first unresolvable label.
// Finalize is idempotent.
func (r *Registry) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.finalized {
		return nil
	}

	for label, childLabels := range r.pending {
		n := r.nodes[label]
		n.children = make([]*Node, 0, len(childLabels))
		for _, cl := range childLabels {
			child, ok := r.nodes[cl]
			if !ok {
				return fmt.Errorf("%w: %q referenced by %q", ErrUnknownChild, cl, label)
			}
			n.children = append(n.children, child)
		}
	}

	r.pending = nil
	r.finalized = true
	return nil
}

// Finalized reports whether the registry has been sealed.
func (r *Registry) Finalized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalized
}

// Node looks a rule up by label.
func (r *Registry) Node(label string) (*Node, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[label]
	return n, ok
}

// Labels returns the labels of every defined rule, in no particular order.
func (r *Registry) Labels() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.nodes))
	for label := range r.nodes {
		out = append(out, label)
	}
	return out
}
