// Package rule defines the rule graph: the directed, possibly cyclic graph of
// transitions a flow is allowed to make.
package rule

import "errors"

var (
	// Registry errors
	ErrDuplicateLabel = errors.New("rule label already defined")
	ErrUnknownChild   = errors.New("child rule label not defined")
	ErrFinalized      = errors.New("rule registry is finalized")
	ErrNotFinalized   = errors.New("rule registry is not finalized")

	// RuleSet errors
	ErrDuplicateName = errors.New("rule set name already exists")
	ErrUnknownSet    = errors.New("rule set not found")
)
