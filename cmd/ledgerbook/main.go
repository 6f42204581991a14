package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ledgerbook/ledgerbook/cmd/ledgerbook/cli"
	"github.com/ledgerbook/ledgerbook/internal/app"
	"github.com/ledgerbook/ledgerbook/internal/export"
	"github.com/ledgerbook/ledgerbook/internal/ledger"
	"github.com/ledgerbook/ledgerbook/internal/observability"
	"github.com/ledgerbook/ledgerbook/internal/realtime"
	"github.com/ledgerbook/ledgerbook/internal/reports"
	"github.com/ledgerbook/ledgerbook/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := runJobs(ctx, cfg, os.Args[2:]); err != nil {
			logger.Error("jobs command", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	backend, err := app.NewBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("init backend", slog.Any("error", err))
		os.Exit(1)
	}
	defer backend.Close()

	metrics := observability.NewMetrics()

	hub := realtime.NewHub(logger, cfg.FrontendOrigin)
	if err := hub.Run(ctx, backend.Cache); err != nil {
		logger.Error("subscribe realtime", slog.Any("error", err))
		os.Exit(1)
	}
	defer hub.Close()
	metrics.GaugeFunc("ledgerbook_realtime_clients", "Connected realtime clients.", func() float64 {
		return float64(hub.Count())
	})

	renderer, closeRenderer := app.NewPDFRenderer(cfg)
	defer func() {
		if err := closeRenderer(); err != nil {
			logger.Warn("close pdf renderer", slog.Any("error", err))
		}
	}()
	exportService, err := export.NewService(backend.Reports, renderer)
	if err != nil {
		logger.Error("init export", slog.Any("error", err))
		os.Exit(1)
	}

	var jobHandler *jobs.Handler
	if backend.Redis != nil {
		redisOpt, err := jobs.RedisOpt(cfg.RedisAddr)
		if err != nil {
			logger.Error("redis options", slog.Any("error", err))
			os.Exit(1)
		}
		inspector := asynq.NewInspector(redisOpt)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	} else {
		jobHandler = jobs.NewHandler(nil, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		LedgerHandler:  ledger.NewHandler(logger, backend.Ledger),
		ReportsHandler: reports.NewHandler(logger, backend.Reports, app.AdminGuard(cfg.AdminTokenHash, logger)),
		ExportHandler:  export.NewHandler(logger, exportService),
		JobHandler:     jobHandler,
		Hub:            hub,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("sheets", cfg.SheetsBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// runJobs handles `ledgerbook jobs trigger|stats|scheduled`.
func runJobs(ctx context.Context, cfg *app.Config, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: ledgerbook jobs trigger <job> [date] | stats | scheduled")
	}
	c, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
	}()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return errors.New("usage: ledgerbook jobs trigger <job> [date]")
		}
		date := ""
		if len(args) > 2 {
			date = args[2]
		}
		info, err := c.Trigger(ctx, args[1], date)
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	case "stats":
		stats, err := c.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d archived=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry, stats.Archived)
	case "scheduled":
		tasks, err := c.ListScheduled(ctx, 20)
		if err != nil {
			return err
		}
		for _, t := range tasks {
			fmt.Printf("%s %s next=%s\n", t.ID, t.Type, t.NextProcessAt.Format(time.RFC3339))
		}
	default:
		return fmt.Errorf("unknown jobs command %q", args[0])
	}
	return nil
}
