package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerbook/ledgerbook/internal/app"
	jobmetrics "github.com/ledgerbook/ledgerbook/internal/jobs"
	"github.com/ledgerbook/ledgerbook/internal/observability"
	_ "github.com/ledgerbook/ledgerbook/internal/testing/guard"
)

func TestWorkerSkipsStartupInTestMode(t *testing.T) {
	_ = app.RefreshTestMode()
	assert.True(t, app.InTestMode())
	assert.NotPanics(t, main)
}

func TestMetricsServerExposesSnapshotGauges(t *testing.T) {
	metrics := observability.NewMetrics()
	jobmetrics.NewMetrics(metrics.Registerer()).ObserveSnapshot(4)

	srv := metricsServer(":0", metrics)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ledgerbook_snapshot_rows 4")
	assert.Contains(t, rec.Body.String(), "ledgerbook_snapshot_last_success_timestamp_seconds")
}
