package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerbook/ledgerbook/internal/export"
	"github.com/ledgerbook/ledgerbook/internal/ledger"
	"github.com/ledgerbook/ledgerbook/internal/observability"
	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
	"github.com/ledgerbook/ledgerbook/internal/realtime"
	"github.com/ledgerbook/ledgerbook/internal/reports"
	"github.com/ledgerbook/ledgerbook/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	LedgerHandler  *ledger.Handler
	ReportsHandler *reports.Handler
	ExportHandler  *export.Handler
	JobHandler     *jobs.Handler
	Hub            *realtime.Hub
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	// WebSocket upgrades bypass the timeout and compression middleware.
	if params.Hub != nil {
		r.Handle("/ws", params.Hub)
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:  params.Logger,
			Config:  params.Config,
			Metrics: params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
			httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		if params.LedgerHandler != nil {
			r.Route("/api/customers", params.LedgerHandler.MountRoutes)
		}
		if params.ReportsHandler != nil {
			r.Route("/api/reports", params.ReportsHandler.MountRoutes)
		}
		if params.ExportHandler != nil {
			r.Route("/api/exports", params.ExportHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
		if params.Metrics != nil {
			r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
		}
	})

	return r
}
