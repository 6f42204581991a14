package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":5000"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`
	AppTimezone       string        `envconfig:"APP_TIMEZONE" default:"UTC"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	FrontendOrigin string `envconfig:"FRONTEND_ORIGIN" default:"http://localhost:5173"`

	SheetsBackend           string `envconfig:"SHEETS_BACKEND" default:"google"`
	GoogleSheetID           string `envconfig:"GOOGLE_SHEET_ID"`
	GoogleServiceAccountKey string `envconfig:"GOOGLE_SERVICE_ACCOUNT_KEY"`

	RedisAddr string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"30s"`

	AuditPGDSN string `envconfig:"AUDIT_PG_DSN"`

	PDFRenderer  string `envconfig:"PDF_RENDERER" default:"gotenberg"`
	GotenbergURL string `envconfig:"GOTENBERG_URL" default:"http://127.0.0.1:3000"`
	ChromiumBin  string `envconfig:"CHROMIUM_BIN"`

	AdminTokenHash     string `envconfig:"ADMIN_TOKEN_HASH"`
	RateLimitPerMinute int    `envconfig:"RATE_LIMIT_PER_MINUTE" default:"120"`

	SnapshotCron string `envconfig:"SNAPSHOT_CRON" default:"55 23 * * *"`
	// WorkerMetricsAddr serves the worker's /metrics; empty disables it.
	WorkerMetricsAddr string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.SheetsBackend {
	case "google":
		if c.GoogleSheetID == "" {
			return errors.New("GOOGLE_SHEET_ID must be provided for the google backend")
		}
		if c.GoogleServiceAccountKey == "" {
			return errors.New("GOOGLE_SERVICE_ACCOUNT_KEY must be provided for the google backend")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown SHEETS_BACKEND %q", c.SheetsBackend)
	}
	switch c.PDFRenderer {
	case "gotenberg", "chromium", "none":
	default:
		return fmt.Errorf("unknown PDF_RENDERER %q", c.PDFRenderer)
	}
	if _, err := time.LoadLocation(c.AppTimezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	if strings.TrimSpace(c.SnapshotCron) == "" {
		return errors.New("SNAPSHOT_CRON must not be empty")
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// SheetKey identifies the spreadsheet in lock keys.
func (c *Config) SheetKey() string {
	if c.SheetsBackend == "memory" || c.GoogleSheetID == "" {
		return "memory"
	}
	return c.GoogleSheetID
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
