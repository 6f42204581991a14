package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SHEETS_BACKEND", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.AppAddr)
	assert.Equal(t, "55 23 * * *", cfg.SnapshotCron)
	assert.Equal(t, ":9091", cfg.WorkerMetricsAddr)
	assert.Equal(t, "gotenberg", cfg.PDFRenderer)
	assert.Equal(t, "memory", cfg.SheetKey())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigGoogleRequiresCredentials(t *testing.T) {
	t.Setenv("SHEETS_BACKEND", "google")
	t.Setenv("GOOGLE_SHEET_ID", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_KEY", "")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "GOOGLE_SHEET_ID")

	t.Setenv("GOOGLE_SHEET_ID", "sheet-1")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "GOOGLE_SERVICE_ACCOUNT_KEY")

	t.Setenv("GOOGLE_SERVICE_ACCOUNT_KEY", "/secrets/key.json")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", cfg.SheetKey())
}

func TestConfigValidate(t *testing.T) {
	base := Config{SheetsBackend: "memory", PDFRenderer: "chromium", AppTimezone: "Asia/Dhaka", SnapshotCron: "0 0 * * *"}
	require.NoError(t, base.Validate())
	assert.Equal(t, "Asia/Dhaka", base.Location().String())

	bad := base
	bad.SheetsBackend = "excel"
	assert.Error(t, bad.Validate())

	bad = base
	bad.PDFRenderer = "wkhtml"
	assert.Error(t, bad.Validate())

	bad = base
	bad.AppTimezone = "Mars/Olympus"
	assert.Error(t, bad.Validate())
}
