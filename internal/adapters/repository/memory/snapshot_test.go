package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cltrudeau/flowr/internal/core/snapshot"
	"github.com/cltrudeau/flowr/pkg/serialization"
)

func makeSnapshot(id, flowID string, taken time.Time) *snapshot.Snapshot {
	return &snapshot.Snapshot{
		ID:        id,
		FlowID:    flowID,
		StateID:   "state-" + id,
		Positions: []string{"n1"},
		History: []snapshot.HistoryRecord{
			{NodeID: "n1", Kind: "enter", At: taken},
		},
		Taken:   taken,
		Version: "1",
	}
}

func TestSnapshotStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore(nil)

	snap := makeSnapshot("s1", "f1", time.Now().UTC())
	require.NoError(t, store.Save(ctx, snap))

	t.Run("load returns an independent copy", func(t *testing.T) {
		got, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "s1", got.ID)
		assert.Equal(t, "f1", got.FlowID)

		got.Positions[0] = "mutated"
		again, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, []string{"n1"}, again.Positions)
	})

	t.Run("save replaces same ID", func(t *testing.T) {
		updated := makeSnapshot("s1", "f1", time.Now().UTC())
		updated.Positions = []string{"n2"}
		require.NoError(t, store.Save(ctx, updated))

		got, err := store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, []string{"n2"}, got.Positions)
	})

	t.Run("missing ID", func(t *testing.T) {
		_, err := store.Load(ctx, "nope")
		assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)
	})

	t.Run("invalid snapshot is rejected", func(t *testing.T) {
		err := store.Save(ctx, &snapshot.Snapshot{ID: "x"})
		assert.ErrorIs(t, err, snapshot.ErrInvalidFlowID)
	})
}

func TestSnapshotStore_List(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore(serialization.New(serialization.Config{
		Codec: serialization.JSONCodec{},
	}))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		flowID := "f1"
		if i >= 3 {
			flowID = "f2"
		}
		snap := makeSnapshot(fmt.Sprintf("s%d", i), flowID, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Save(ctx, snap))
	}

	t.Run("all snapshots, oldest first", func(t *testing.T) {
		got, err := store.List(ctx, snapshot.Filter{})
		require.NoError(t, err)
		require.Len(t, got, 5)
		assert.Equal(t, "s0", got[0].ID)
		assert.Equal(t, "s4", got[4].ID)
	})

	t.Run("filter by flow", func(t *testing.T) {
		got, err := store.List(ctx, snapshot.Filter{FlowID: "f2"})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("filter by state", func(t *testing.T) {
		got, err := store.List(ctx, snapshot.Filter{StateID: "state-s3"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "s3", got[0].ID)
	})

	t.Run("since cutoff", func(t *testing.T) {
		cutoff := base.Add(3 * time.Minute)
		got, err := store.List(ctx, snapshot.Filter{Since: &cutoff})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("limit and offset", func(t *testing.T) {
		got, err := store.List(ctx, snapshot.Filter{Limit: 2, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "s1", got[0].ID)
		assert.Equal(t, "s2", got[1].ID)
	})

	t.Run("offset past the end", func(t *testing.T) {
		got, err := store.List(ctx, snapshot.Filter{Offset: 10})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, err := store.List(ctx, snapshot.Filter{Limit: -1})
		assert.ErrorIs(t, err, snapshot.ErrInvalidLimit)
	})
}

func TestSnapshotStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewSnapshotStore(nil)

	require.NoError(t, store.Save(ctx, makeSnapshot("s1", "f1", time.Now().UTC())))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, snapshot.ErrSnapshotNotFound)

	assert.ErrorIs(t, store.Delete(ctx, "s1"), snapshot.ErrSnapshotNotFound)

	got, err := store.List(ctx, snapshot.Filter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}
