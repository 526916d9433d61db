package snapshot

import (
	"context"
	"time"
)

// Store persists snapshots. Implementations live under
// internal/adapters/repository; the engine depends only on this interface.
type Store interface {
	// Save persists a snapshot, replacing any snapshot with the same ID.
	Save(ctx context.Context, snap *Snapshot) error

	// Load retrieves a snapshot by ID.
	Load(ctx context.Context, id string) (*Snapshot, error)

	// List returns snapshots matching the filter.
	List(ctx context.Context, filter Filter) ([]*Snapshot, error)

	// Delete removes a snapshot by ID.
	Delete(ctx context.Context, id string) error
}

// Filter narrows a List call.
type Filter struct {
	FlowID  string     `json:"flow_id,omitempty"`
	StateID string     `json:"state_id,omitempty"`
	Limit   int        `json:"limit,omitempty"`
	Offset  int        `json:"offset,omitempty"`
	Since   *time.Time `json:"since,omitempty"`
}

// Validate ensures filter parameters are sane.
func (f *Filter) Validate() error {
	if f.Limit < 0 {
		return ErrInvalidLimit
	}
	if f.Offset < 0 {
		return ErrInvalidOffset
	}
	return nil
}
