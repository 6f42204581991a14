package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"

	"github.com/ledgerbook/ledgerbook/internal/app"
	jobmetrics "github.com/ledgerbook/ledgerbook/internal/jobs"
	"github.com/ledgerbook/ledgerbook/internal/observability"
	"github.com/ledgerbook/ledgerbook/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg).With(slog.String("component", "worker"))

	backend, err := app.NewBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("init backend", slog.Any("error", err))
		os.Exit(1)
	}
	defer backend.Close()
	if backend.Redis == nil {
		logger.Error("worker requires redis", slog.String("addr", cfg.RedisAddr))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	snapshotJob := jobs.NewSnapshotJob(backend.Reports, logger, jobmetrics.NewMetrics(metrics.Registerer()))
	snapshotTask, err := jobs.NewReportSnapshotTask(jobs.SnapshotPayload{})
	if err != nil {
		logger.Error("build snapshot task", slog.Any("error", err))
		os.Exit(1)
	}

	redisOpt, err := jobs.RedisOpt(cfg.RedisAddr)
	if err != nil {
		logger.Error("redis options", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpt,
		Logger:    logger,
		Location:  cfg.Location(),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportSnapshot, Handler: snapshotJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.SnapshotCron, Task: snapshotTask, Options: []asynq.Option{asynq.MaxRetry(3), asynq.Timeout(5 * time.Minute)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		srv := metricsServer(cfg.WorkerMetricsAddr, metrics)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", slog.Any("error", err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	logger.Info("worker started", slog.String("snapshot_cron", cfg.SnapshotCron), slog.String("timezone", cfg.AppTimezone))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func metricsServer(addr string, metrics *observability.Metrics) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler())
	return &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}
}
