package export

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
)

// Handler serves export downloads.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers export routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/report/{reportId}", h.exportReport)
	r.Post("/range", h.exportRange)
	r.Get("/renderer/health", h.rendererHealth)
}

func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request) {
	format, err := ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		httpx.RespondError(w, err, "")
		return
	}
	id := chi.URLParam(r, "reportId")
	file, err := h.service.ExportReport(r.Context(), id, format)
	if err != nil {
		h.logger.Error("export report", slog.String("id", id), slog.Any("error", err))
		h.respondError(w, err, "Failed to export report")
		return
	}
	httpx.Attachment(w, file.Name, file.ContentType, file.Body)
}

func (h *Handler) exportRange(w http.ResponseWriter, r *http.Request) {
	var req RangeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	file, err := h.service.ExportRange(r.Context(), req)
	if err != nil {
		h.logger.Error("export range", slog.String("from", req.From), slog.String("to", req.To), slog.Any("error", err))
		h.respondError(w, err, "Failed to export range")
		return
	}
	httpx.Attachment(w, file.Name, file.ContentType, file.Body)
}

func (h *Handler) rendererHealth(w http.ResponseWriter, r *http.Request) {
	checker, ok := h.service.Renderer().(HealthChecker)
	if !ok || checker == nil {
		httpx.Error(w, http.StatusServiceUnavailable, "PDF renderer not configured")
		return
	}
	if err := checker.Ping(r.Context()); err != nil {
		h.logger.Warn("pdf renderer unhealthy", slog.Any("error", err))
		httpx.Error(w, http.StatusServiceUnavailable, "PDF renderer unavailable")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, ErrRendererUnavailable) {
		httpx.Error(w, http.StatusServiceUnavailable, "PDF renderer not configured")
		return
	}
	httpx.RespondError(w, err, fallback)
}
