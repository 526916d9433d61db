package snapshot

import "errors"

var (
	ErrInvalidSnapshotID = errors.New("invalid snapshot ID")
	ErrInvalidFlowID     = errors.New("invalid flow ID")
	ErrInvalidStateID    = errors.New("invalid state ID")
	ErrSnapshotNotFound  = errors.New("snapshot not found")
	ErrInvalidLimit      = errors.New("limit must be non-negative")
	ErrInvalidOffset     = errors.New("offset must be non-negative")
)
