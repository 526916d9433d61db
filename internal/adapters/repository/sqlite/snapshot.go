// Package sqlite provides a snapshot store backed by SQLite through the
// CGo-free modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/cltrudeau/flowr/internal/core/snapshot"
	"github.com/cltrudeau/flowr/internal/infrastructure/metrics"
	"github.com/cltrudeau/flowr/pkg/serialization"
)

// SnapshotStore implements snapshot.Store on a *sql.DB opened with the
// "sqlite" driver. Layout matches the postgres store: identifying columns
// plus one serialized payload column.
type SnapshotStore struct {
	db         *sql.DB
	serializer *serialization.Serializer
	tableName  string
}

// Open opens (or creates) a SQLite database at path and prepares the
// snapshot schema. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string, s *serialization.Serializer) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	st := NewSnapshotStore(db, s)
	if err := st.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

// NewSnapshotStore wraps an existing database handle.
func NewSnapshotStore(db *sql.DB, s *serialization.Serializer) *SnapshotStore {
	if s == nil {
		s = serialization.Default()
	}
	return &SnapshotStore{
		db:         db,
		serializer: s,
		tableName:  "flowr_snapshots",
	}
}

// Close closes the underlying database handle.
func (st *SnapshotStore) Close() error {
	return st.db.Close()
}

// EnsureSchema creates the snapshot table if it does not exist.
func (st *SnapshotStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id        TEXT PRIMARY KEY,
			flow_id   TEXT NOT NULL,
			state_id  TEXT NOT NULL,
			payload   BLOB NOT NULL,
			taken     TIMESTAMP NOT NULL,
			version   TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS %s_flow_idx ON %s (flow_id);
	`, st.tableName, st.tableName, st.tableName)

	if _, err := st.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}

// Save upserts a snapshot.
func (st *SnapshotStore) Save(ctx context.Context, snap *snapshot.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	payload, err := st.serializer.Marshal(snap)
	if err != nil {
		return fmt.Errorf("serialize snapshot: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, flow_id, state_id, payload, taken, version)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			payload = excluded.payload,
			taken = excluded.taken,
			version = excluded.version
	`, st.tableName)

	_, err = st.db.ExecContext(ctx, query,
		snap.ID, snap.FlowID, snap.StateID, payload, snap.Taken, snap.Version)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	metrics.SnapshotSaved("sqlite")
	return nil
}

// Load retrieves a snapshot by ID.
func (st *SnapshotStore) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	if id == "" {
		return nil, snapshot.ErrInvalidSnapshotID
	}

	query := fmt.Sprintf(`SELECT payload FROM %s WHERE id = ?`, st.tableName)

	var payload []byte
	err := st.db.QueryRowContext(ctx, query, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, snapshot.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap snapshot.Snapshot
	if err := st.serializer.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("deserialize snapshot: %w", err)
	}

	metrics.SnapshotLoaded("sqlite")
	return &snap, nil
}

// List retrieves snapshots matching the filter, oldest first.
func (st *SnapshotStore) List(ctx context.Context, filter snapshot.Filter) ([]*snapshot.Snapshot, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	var (
		conds []string
		args  []interface{}
	)
	if filter.FlowID != "" {
		conds = append(conds, "flow_id = ?")
		args = append(args, filter.FlowID)
	}
	if filter.StateID != "" {
		conds = append(conds, "state_id = ?")
		args = append(args, filter.StateID)
	}
	if filter.Since != nil {
		conds = append(conds, "taken >= ?")
		args = append(args, *filter.Since)
	}

	query := fmt.Sprintf("SELECT payload FROM %s", st.tableName)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY taken ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := st.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*snapshot.Snapshot
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		var snap snapshot.Snapshot
		if err := st.serializer.Unmarshal(payload, &snap); err != nil {
			return nil, fmt.Errorf("deserialize snapshot: %w", err)
		}
		snaps = append(snaps, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}
	return snaps, nil
}

// Delete removes a snapshot by ID.
func (st *SnapshotStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, st.tableName)
	res, err := st.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if n == 0 {
		return snapshot.ErrSnapshotNotFound
	}
	return nil
}
