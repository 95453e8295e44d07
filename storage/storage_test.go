package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellgraph/wellgraph/errors"
	"github.com/wellgraph/wellgraph/fact"
	"github.com/wellgraph/wellgraph/graph"
	"github.com/wellgraph/wellgraph/vocabulary"
)

func sampleSnapshot(sessionID string) graph.Snapshot {
	return graph.Snapshot{
		SessionID: sessionID,
		Turn:      2,
		Facts: []fact.Fact{
			{Subject: "student." + sessionID, Predicate: vocabulary.EvidenceEmotion, Object: vocabulary.Anxiety, Source: fact.FromTurn(1)},
			{Subject: "student." + sessionID, Predicate: vocabulary.EvidenceSymptom, Object: vocabulary.Insomnia, Source: fact.FromTurn(2)},
			{Subject: "student." + sessionID, Predicate: vocabulary.StateRisk, Object: vocabulary.SleepDisturbance, Source: fact.FromRule("R_SLEEP_01")},
		},
	}
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrSessionNotFound))

	snap := sampleSnapshot("sess-1")
	require.NoError(t, store.Save(ctx, snap))

	got, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	// Save replaces, never merges.
	smaller := graph.Snapshot{SessionID: "sess-1", Turn: 3, Facts: snap.Facts[:1]}
	require.NoError(t, store.Save(ctx, smaller))
	got, err = store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Turn)
	require.Len(t, got.Facts, 1)
	assert.Equal(t, snap.Facts[0], got.Facts[0])

	require.NoError(t, store.Save(ctx, sampleSnapshot("sess-2")))
	ids, err := store.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"sess-1", "sess-2"}, ids)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	testStore(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "sessions.db"), nil)
	require.NoError(t, err)
	defer store.Close()
	testStore(t, store)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")

	store, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	snap := sampleSnapshot("sess-1")
	require.NoError(t, store.Save(ctx, snap))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(ctx, path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	// A loaded snapshot hydrates into a graph cleanly.
	g := graph.New("sess-1", vocabulary.Standard(), nil)
	require.NoError(t, g.Hydrate(got))
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 2, g.Turn())
}
