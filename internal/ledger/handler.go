package ledger

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerbook/ledgerbook/internal/platform/httpx"
)

// Handler exposes Current Data over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.upsert)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/clear", h.clear)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		Date:  q.Get("date"),
		Page:  queryInt(q.Get("page")),
		Limit: queryInt(q.Get("limit")),
	}
	res, err := h.service.List(r.Context(), params)
	if err != nil {
		h.logger.Error("list customers", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to fetch data")
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	entry, err := h.service.Upsert(r.Context(), req)
	if err != nil {
		h.logger.Error("upsert customer", slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to save data")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "row": entry})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete customer", slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to delete customer")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, err := h.service.Clear(r.Context(), id)
	if err != nil {
		h.logger.Error("clear customer", slog.String("id", id), slog.Any("error", err))
		httpx.RespondError(w, err, "Failed to clear customer data")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "row": entry})
}

func queryInt(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
