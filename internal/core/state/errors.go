// Package state implements the traversal engine: a live walk of a frozen
// flow that may hold several concurrently active positions.
package state

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPosition is returned when an operation names a position that
	// is not currently active.
	ErrInvalidPosition = errors.New("position is not active in this state")

	// ErrNotARoot is returned when Start is given a node that is not one of
	// the flow's start nodes.
	ErrNotARoot = errors.New("node is not a start node of the flow")
)

// HookError wraps a failure raised by a rule's enter or exit hook. The
// transition that triggered the hook is rolled back completely: positions and
// history are exactly as they were before the call, so a retry is always
// safe.
type HookError struct {
	Op   string // "enter" or "exit"
	Rule string // label of the rule whose hook failed
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook failed for rule %q: %v", e.Op, e.Rule, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }
