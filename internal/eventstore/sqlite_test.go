package eventstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendAndGetByBuildID(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "b1", EventBuildStarted, []byte(`{"pages":0}`), map[string]string{"trigger": "manual"}))
	require.NoError(t, store.Append(ctx, "b1", EventBuildCompleted, nil, nil))
	require.NoError(t, store.Append(ctx, "b2", EventBuildStarted, nil, nil))

	events, err := store.GetByBuildID(ctx, "b1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventBuildStarted, events[0].Type)
	assert.Equal(t, EventBuildCompleted, events[1].Type)
	assert.Equal(t, map[string]string{"trigger": "manual"}, events[0].Metadata)
	assert.Equal(t, `{"pages":0}`, string(events[0].Payload))
}

func TestGetRange_FiltersByTime(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Minute)
	require.NoError(t, store.Append(ctx, "b1", EventBuildStarted, nil, nil))
	after := time.Now().Add(time.Minute)

	events, err := store.GetRange(ctx, before, after)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	events, err = store.GetRange(ctx, after, after.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLatestBuilds_ProjectsOutcomes(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "ok", EventBuildStarted, nil, nil))
	require.NoError(t, store.Append(ctx, "ok", EventBuildCompleted, nil, nil))
	require.NoError(t, store.Append(ctx, "bad", EventBuildStarted, nil, nil))
	require.NoError(t, store.Append(ctx, "bad", EventBuildFailed, nil, nil))
	require.NoError(t, store.Append(ctx, "inflight", EventBuildStarted, nil, nil))

	summaries, err := store.LatestBuilds(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	outcomes := map[string]string{}
	for _, s := range summaries {
		outcomes[s.BuildID] = s.Outcome
	}
	assert.Equal(t, "success", outcomes["ok"])
	assert.Equal(t, "failed", outcomes["bad"])
	assert.Equal(t, "running", outcomes["inflight"])
}

func TestLatestBuilds_RespectsLimit(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, id, EventBuildStarted, nil, nil))
	}

	summaries, err := store.LatestBuilds(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, summaries, 2)
}
