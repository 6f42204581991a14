package reports

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
)

// Handler exposes saved reports over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
	admin   func(http.Handler) http.Handler
}

// NewHandler builds a Handler. admin guards the destructive routes; nil
// leaves them open.
func NewHandler(logger *slog.Logger, service *Service, admin func(http.Handler) http.Handler) *Handler {
	if admin == nil {
		admin = func(next http.Handler) http.Handler { return next }
	}
	return &Handler{logger: logger, service: service, admin: admin}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/submit", h.submit)
	r.Get("/{reportId}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.admin)
		r.Delete("/{reportId}", h.delete)
		r.Post("/clear-all", h.clearAll)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	res, err := h.service.List(r.Context(), ListParams{Month: q.Get("month"), Page: page, Limit: limit})
	if err != nil {
		h.logger.Error("list reports", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to fetch reports")
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	report, err := h.service.Submit(r.Context(), req.Date)
	if err != nil {
		h.logger.Error("submit report", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to submit report")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "report": report})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportId")
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get report", slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to fetch report")
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "reportId")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete report", slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to delete report")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) clearAll(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.ClearAll(r.Context())
	if err != nil {
		h.logger.Error("clear reports", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to clear all reports")
		return
	}
	h.logger.Info("reports cleared", slog.Int("tabs", removed))
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

