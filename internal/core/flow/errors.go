// Package flow implements user-composed workflow graphs constrained by a
// rule set. A flow is mutable while it is being composed and freezes
// permanently the moment a traversal starts against it.
package flow

import "errors"

var (
	// ErrFrozen is returned by any mutation attempted after the flow froze.
	// This is an expected, recoverable condition: the caller composed past
	// the point where execution began.
	ErrFrozen = errors.New("flow is frozen")

	// ErrRuleNotInSet is returned when a node references a rule that is not
	// reachable within the flow's governing rule set. Also reported when a
	// persisted flow names an unknown rule at load time.
	ErrRuleNotInSet = errors.New("rule is not part of the flow's rule set")

	// ErrIllegalTransition is returned when an edge does not correspond to a
	// declared parent->child relationship in the rule graph.
	ErrIllegalTransition = errors.New("transition not allowed by rule graph")

	// ErrNodeNotInFlow is returned when an edge endpoint belongs to a
	// different flow.
	ErrNodeNotInFlow = errors.New("node does not belong to this flow")

	// ErrNoRoots is returned when an operation requires at least one start
	// node and the flow has none.
	ErrNoRoots = errors.New("flow has no start node")

	// ErrCannotRemove is returned when removing a node would disconnect the
	// flow graph.
	ErrCannotRemove = errors.New("node cannot be removed without splitting the flow")

	// ErrDuplicateNodeID is returned when restoring a persisted flow that
	// contains two nodes with the same ID.
	ErrDuplicateNodeID = errors.New("duplicate flow node ID")

	// ErrUnknownNodeID is returned when a persisted flow references a node
	// ID that does not exist in its node set.
	ErrUnknownNodeID = errors.New("unknown flow node ID")
)
