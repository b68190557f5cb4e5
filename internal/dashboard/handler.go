package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/laxmi-pos/laxmi-pos/internal/platform/httpx"
)

// Handler serves dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.summary)
	r.Get("/dashboard/low-stock", h.lowStock)
	r.Get("/dashboard/pending-tokens", h.pending)
	r.Get("/dashboard/empty-tokens", h.empty)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context(), time.Now())
	if err != nil {
		h.fail(w, "summary", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.LowStock(r.Context())
	if err != nil {
		h.fail(w, "low stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) pending(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.PendingTokens(r.Context())
	if err != nil {
		h.fail(w, "pending tokens", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token_ids": ids})
}

func (h *Handler) empty(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.EmptyTokens(r.Context())
	if err != nil {
		h.fail(w, "empty tokens", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token_ids": ids})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Error("dashboard "+op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
