package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("report:snapshot").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("report:snapshot").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("report:snapshot", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("report:snapshot", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("report:snapshot")))
}

func TestObserveSnapshot(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.ObserveSnapshot(12)
	assert.Equal(t, 12.0, testutil.ToFloat64(m.snapshotRows))
	assert.Greater(t, testutil.ToFloat64(m.snapshotAt), 0.0)

	var nilMetrics *Metrics
	nilMetrics.ObserveSnapshot(3)
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
