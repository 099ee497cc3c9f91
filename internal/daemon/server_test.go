package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zkcodehub/sitectl/internal/eventstore"
	"github.com/zkcodehub/sitectl/internal/metrics"
)

func newTestServer(t *testing.T, status func() *BuildStatus) (*httptest.Server, eventstore.Store) {
	t.Helper()
	store, err := eventstore.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	recorder := metrics.NewPrometheusRecorder(prom.NewRegistry())
	server := NewServer(":0", recorder, store, status)
	ts := httptest.NewServer(server.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, store
}

func TestServer_Healthz(t *testing.T) {
	ts, _ := newTestServer(t, func() *BuildStatus { return nil })

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_StatusBeforeFirstBuild(t *testing.T) {
	ts, _ := newTestServer(t, func() *BuildStatus { return nil })

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "no builds yet", body["state"])
}

func TestServer_StatusAfterBuild(t *testing.T) {
	status := &BuildStatus{BuildID: "b1", Trigger: "manual", Success: true, Pages: 7, StartedAt: time.Now()}
	ts, _ := newTestServer(t, func() *BuildStatus { return status })

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var got BuildStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "b1", got.BuildID)
	assert.Equal(t, 7, got.Pages)
	assert.True(t, got.Success)
}

func TestServer_BuildsAndEvents(t *testing.T) {
	ts, store := newTestServer(t, func() *BuildStatus { return nil })
	ctx := context.Background()
	require.NoError(t, store.Append(ctx, "b1", eventstore.EventBuildStarted, []byte(`{"k":1}`), nil))
	require.NoError(t, store.Append(ctx, "b1", eventstore.EventBuildCompleted, nil, nil))

	resp, err := http.Get(ts.URL + "/api/builds")
	require.NoError(t, err)
	defer resp.Body.Close()

	var builds []eventstore.BuildSummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&builds))
	require.Len(t, builds, 1)
	assert.Equal(t, "success", builds[0].Outcome)

	resp2, err := http.Get(ts.URL + "/api/builds/b1")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3, err := http.Get(ts.URL + "/api/builds/nope")
	require.NoError(t, err)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}

func TestServer_Metrics(t *testing.T) {
	ts, _ := newTestServer(t, func() *BuildStatus { return nil })

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
