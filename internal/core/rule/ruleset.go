package rule

import (
	"fmt"
	"sync"
)

// RuleSet is a named handle to one rule graph's entry point. It is created
// once, never mutated, and referenced by any number of flows.
type RuleSet struct {
	name     string
	root     *Node
	registry *Registry
}

// Name returns the rule set's unique name.
func (rs *RuleSet) Name() string { return rs.name }

// Root returns the entry point of the rule graph.
func (rs *RuleSet) Root() *Node { return rs.root }

// Registry returns the registry the root was defined in.
func (rs *RuleSet) Registry() *Registry { return rs.registry }

// Contains reports whether n is reachable from the rule set's root. Used by
// flow construction to reject rules from outside the governing graph.
func (rs *RuleSet) Contains(n *Node) bool {
	if n == nil {
		return false
	}
	return reachable(rs.root, n)
}

// Sets is the process-wide registry of named rule sets.
type Sets struct {
	mu     sync.RWMutex
	byName map[string]*RuleSet
}

// NewSets returns an empty rule set registry.
func NewSets() *Sets {
	return &Sets{byName: make(map[string]*RuleSet)}
}

// New creates and records a rule set wrapping root. The registry that defined
// root must be finalized first. Fails with ErrDuplicateName if the name is
// already taken.
func (s *Sets) New(name string, root *Node, registry *Registry) (*RuleSet, error) {
	if !registry.Finalized() {
		return nil, ErrNotFinalized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	rs := &RuleSet{name: name, root: root, registry: registry}
	s.byName[name] = rs
	return rs, nil
}

// Get looks a rule set up by name.
func (s *Sets) Get(name string) (*RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rs, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSet, name)
	}
	return rs, nil
}

// Names returns the names of all registered rule sets.
func (s *Sets) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byName))
	for name := range s.byName {
		out = append(out, name)
	}
	return out
}
