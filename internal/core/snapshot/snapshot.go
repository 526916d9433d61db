// Package snapshot provides the persisted form of a traversal and the store
// interfaces the repository adapters implement.
package snapshot

import (
	"time"
)

// HistoryRecord is one persisted enter/exit event.
type HistoryRecord struct {
	NodeID string    `json:"node_id" msgpack:"node_id" validate:"required"`
	Kind   string    `json:"kind" msgpack:"kind" validate:"required,oneof=enter exit"`
	At     time.Time `json:"at" msgpack:"at"`
}

// Snapshot captures a traversal at a point in time: which flow it walks,
// where its positions are, and the full audit trail. It is a plain record;
// rebuilding a live State from it is the dto package's job.
type Snapshot struct {
	ID        string              `json:"id" msgpack:"id" validate:"required"`
	FlowID    string              `json:"flow_id" msgpack:"flow_id" validate:"required"`
	StateID   string              `json:"state_id" msgpack:"state_id" validate:"required"`
	Positions []string            `json:"positions" msgpack:"positions"`
	Activated map[string][]string `json:"activated,omitempty" msgpack:"activated,omitempty"`
	History   []HistoryRecord     `json:"history" msgpack:"history" validate:"dive"`
	Taken     time.Time           `json:"taken" msgpack:"taken"`
	Version   string              `json:"version" msgpack:"version"`
}

// Validate ensures the snapshot carries the fields every store requires.
func (s *Snapshot) Validate() error {
	if s.ID == "" {
		return ErrInvalidSnapshotID
	}
	if s.FlowID == "" {
		return ErrInvalidFlowID
	}
	if s.StateID == "" {
		return ErrInvalidStateID
	}
	return nil
}
