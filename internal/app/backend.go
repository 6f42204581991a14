package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ledgerbook/ledgerbook/internal/ledger"
	"github.com/ledgerbook/ledgerbook/internal/platform/cache"
	"github.com/ledgerbook/ledgerbook/internal/platform/db"
	"github.com/ledgerbook/ledgerbook/internal/platform/sheets"
	"github.com/ledgerbook/ledgerbook/internal/reports"
	"github.com/ledgerbook/ledgerbook/internal/shared"
)

const sheetLockTTL = 30 * time.Second

// Backend holds the spreadsheet, cache and services shared by the API
// and the worker.
type Backend struct {
	Store   sheets.Store
	Redis   *redis.Client
	Cache   *cache.Cache
	Tables  *sheets.Tables
	Pool    *pgxpool.Pool
	Audit   *shared.AuditLogger
	Ledger  *ledger.Service
	Reports *reports.Service
}

// NewBackend connects every dependency and makes sure the ledger tabs
// exist. Redis is optional outside production; without it caching and
// locking stay in process.
func NewBackend(ctx context.Context, cfg *Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{}
	store, err := newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	b.Store = store

	client, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Warn("redis unavailable, using in-process cache and locks", slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
		client = nil
	}
	b.Redis = client
	b.Cache = cache.NewCache(client, cfg.CacheTTL)
	b.Tables = sheets.NewTables(store, b.Cache, shared.NewLocker(client, sheetLockTTL), shared.SheetLockKey(cfg.SheetKey()))
	b.Tables.SetLogger(logger)

	if cfg.AuditPGDSN != "" {
		pool, err := db.New(ctx, cfg.AuditPGDSN, db.Options{MaxConns: 4})
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Pool = pool
	}
	b.Audit = shared.NewAuditLogger(b.Pool)
	if err := b.Audit.EnsureSchema(ctx); err != nil {
		b.Close()
		return nil, fmt.Errorf("audit schema: %w", err)
	}

	for _, tab := range []struct {
		title  string
		header []string
	}{
		{ledger.Tab, ledger.Header},
		{reports.Tab, reports.Header},
	} {
		if err := b.Tables.EnsureTab(ctx, tab.title, tab.header); err != nil {
			b.Close()
			return nil, fmt.Errorf("ensure tab %s: %w", tab.title, err)
		}
	}

	loc := cfg.Location()
	b.Ledger = ledger.NewService(b.Tables, b.Audit, logger, loc)
	b.Reports = reports.NewService(b.Tables, b.Audit, logger, loc)
	return b, nil
}

// Close releases connections.
func (b *Backend) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
}

func newStore(ctx context.Context, cfg *Config) (sheets.Store, error) {
	if cfg.SheetsBackend == "memory" {
		return sheets.NewMemoryStore(), nil
	}
	creds, err := sheets.LoadCredentials(cfg.GoogleServiceAccountKey)
	if err != nil {
		return nil, fmt.Errorf("load service account: %w", err)
	}
	store, err := sheets.NewGoogleStore(ctx, cfg.GoogleSheetID, creds)
	if err != nil {
		return nil, fmt.Errorf("google sheets: %w", err)
	}
	return store, nil
}
