package flow

import (
	"fmt"

	"github.com/cltrudeau/flowr/internal/core/rule"
)

// RestoredNode describes one node of a flow being rebuilt from persisted
// form.
type RestoredNode struct {
	ID       string
	Rule     string
	Start    bool
	Children []string
}

// Restore rebuilds a flow from persisted records against rs. A record naming
// a rule label that does not exist in the set is reported as ErrRuleNotInSet
// here, at load time, never mid-traversal. Edge legality is re-checked so a
// corrupted record cannot smuggle in an illegal transition.
func Restore(rs *rule.RuleSet, id string, frozen bool, nodes []RestoredNode) (*Flow, error) {
	f := New(rs)
	if id != "" {
		f.id = id
	}

	byID := make(map[string]*Node, len(nodes))
	maxSeq := 0
	for _, rec := range nodes {
		if _, dup := byID[rec.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateNodeID, rec.ID)
		}
		rn, ok := rs.Registry().Node(rec.Rule)
		if !ok || !rs.Contains(rn) {
			return nil, fmt.Errorf("%w: %q", ErrRuleNotInSet, rec.Rule)
		}
		n := &Node{
			id:      rec.ID,
			rule:    rn,
			isStart: rec.Start,
			flow:    f,
		}
		byID[rec.ID] = n
		f.nodes = append(f.nodes, n)

		var seq int
		if _, err := fmt.Sscanf(rec.ID, "n%d", &seq); err == nil && seq >= maxSeq {
			maxSeq = seq
		}
	}
	f.nextSeq = maxSeq + 1

	for _, rec := range nodes {
		parent := byID[rec.ID]
		for _, childID := range rec.Children {
			child, ok := byID[childID]
			if !ok {
				return nil, fmt.Errorf("%w: %q referenced by %q", ErrUnknownNodeID, childID, rec.ID)
			}
			if !parent.rule.AllowedChild(child.rule) {
				return nil, fmt.Errorf("%w: %q -> %q", ErrIllegalTransition,
					parent.rule.Label(), child.rule.Label())
			}
			parent.children = append(parent.children, child)
		}
	}

	if frozen {
		f.frozen = true
	}
	return f, nil
}
