// Package postgres provides a snapshot store backed by PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cltrudeau/flowr/internal/core/snapshot"
	"github.com/cltrudeau/flowr/internal/infrastructure/metrics"
	"github.com/cltrudeau/flowr/pkg/serialization"
)

// SnapshotStore implements snapshot.Store on a pgx connection pool. The
// traversal payload (positions, activated, history) is stored serialized in
// one column; identifying fields get their own columns for filtering.
type SnapshotStore struct {
	pool       *pgxpool.Pool
	serializer *serialization.Serializer
	tableName  string
}

// NewSnapshotStore creates a PostgreSQL snapshot store. A nil serializer
// defaults to msgpack + zstd.
func NewSnapshotStore(pool *pgxpool.Pool, s *serialization.Serializer) *SnapshotStore {
	if s == nil {
		s = serialization.Default()
	}
	return &SnapshotStore{
		pool:       pool,
		serializer: s,
		tableName:  "flowr_snapshots",
	}
}

// WithTableName overrides the default table name. Only alphanumerics and
// underscores are accepted, since the name is interpolated as an identifier.
func (st *SnapshotStore) WithTableName(name string) *SnapshotStore {
	if isSafeIdent(name) {
		st.tableName = name
	}
	return st
}

func isSafeIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		default:
			return false
		}
	}
	return true
}

// EnsureSchema creates the snapshot table if it does not exist.
func (st *SnapshotStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id        TEXT PRIMARY KEY,
			flow_id   TEXT NOT NULL,
			state_id  TEXT NOT NULL,
			payload   BYTEA NOT NULL,
			taken     TIMESTAMPTZ NOT NULL,
			version   TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS %s_flow_idx ON %s (flow_id);
		CREATE INDEX IF NOT EXISTS %s_state_idx ON %s (state_id);
	`, st.tableName, st.tableName, st.tableName, st.tableName, st.tableName)

	if _, err := st.pool.Exec(ctx, query); err != nil {
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
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			payload = EXCLUDED.payload,
			taken = EXCLUDED.taken,
			version = EXCLUDED.version
	`, st.tableName)

	_, err = st.pool.Exec(ctx, query,
		snap.ID, snap.FlowID, snap.StateID, payload, snap.Taken, snap.Version)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	metrics.SnapshotSaved("postgres")
	return nil
}

// Load retrieves a snapshot by ID.
func (st *SnapshotStore) Load(ctx context.Context, id string) (*snapshot.Snapshot, error) {
	if id == "" {
		return nil, snapshot.ErrInvalidSnapshotID
	}

	query := fmt.Sprintf(`SELECT payload FROM %s WHERE id = $1`, st.tableName)

	var payload []byte
	err := st.pool.QueryRow(ctx, query, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, snapshot.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap snapshot.Snapshot
	if err := st.serializer.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("deserialize snapshot: %w", err)
	}

	metrics.SnapshotLoaded("postgres")
	return &snap, nil
}

// List retrieves snapshots matching the filter, oldest first.
func (st *SnapshotStore) List(ctx context.Context, filter snapshot.Filter) ([]*snapshot.Snapshot, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	query, args := st.buildListQuery(filter)

	rows, err := st.pool.Query(ctx, query, args...)
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

func (st *SnapshotStore) buildListQuery(filter snapshot.Filter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.FlowID != "" {
		conds = append(conds, "flow_id = "+arg(filter.FlowID))
	}
	if filter.StateID != "" {
		conds = append(conds, "state_id = "+arg(filter.StateID))
	}
	if filter.Since != nil {
		conds = append(conds, "taken >= "+arg(*filter.Since))
	}

	query := fmt.Sprintf("SELECT payload FROM %s", st.tableName)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY taken ASC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}
	return query, args
}

// Delete removes a snapshot by ID.
func (st *SnapshotStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, st.tableName)
	tag, err := st.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return snapshot.ErrSnapshotNotFound
	}
	return nil
}
