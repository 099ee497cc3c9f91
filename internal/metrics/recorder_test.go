package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder_CountsStageResults(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.IncStageResult("render", ResultSuccess)
	rec.IncStageResult("render", ResultSuccess)
	rec.IncStageResult("verify", ResultFatal)

	count := testutil.ToFloat64(rec.stageResults.WithLabelValues("render", "success"))
	assert.Equal(t, 2.0, count)
	count = testutil.ToFloat64(rec.stageResults.WithLabelValues("verify", "fatal"))
	assert.Equal(t, 1.0, count)
}

func TestPrometheusRecorder_TracksPagesGauge(t *testing.T) {
	rec := NewPrometheusRecorder(prom.NewRegistry())

	rec.SetPagesDiscovered(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(rec.pagesDiscovered))
}

func TestPrometheusRecorder_ObservationsDoNotPanic(t *testing.T) {
	rec := NewPrometheusRecorder(nil)

	require.NotPanics(t, func() {
		rec.ObserveStageDuration("discover", 120*time.Millisecond)
		rec.ObserveBuildDuration(3 * time.Second)
		rec.ObserveCloneDuration("contracts", time.Second, true)
		rec.IncBuildOutcome("success")
	})
}

func TestNoopRecorder_ImplementsRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	require.NotPanics(t, func() {
		r.ObserveStageDuration("x", time.Second)
		r.IncBuildOutcome("success")
	})
}
