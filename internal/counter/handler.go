package counter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/httpx"
)

// Handler serves counter movements.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers counter routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/counter/sell", h.sell)
	r.Post("/counter/restock", h.restock)
	r.Post("/counter/return", h.returnHolding)
}

type sellRequest struct {
	TokenID  string      `json:"token_id" validate:"required"`
	SKU      catalog.SKU `json:"sku"`
	Quantity int64       `json:"quantity"`
}

func (h *Handler) sell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.MoveDisplayedToToken(r.Context(), req.TokenID, req.SKU, req.Quantity)
	if err != nil {
		h.fail(w, "sell to token", err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

type restockRequest struct {
	SKU      catalog.SKU `json:"sku"`
	Quantity int64       `json:"quantity"`
}

func (h *Handler) restock(w http.ResponseWriter, r *http.Request) {
	var req restockRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.MoveStoredToDisplayed(r.Context(), req.SKU, req.Quantity)
	if err != nil {
		h.fail(w, "restock counter", err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

type returnRequest struct {
	TokenID string      `json:"token_id" validate:"required"`
	SKU     catalog.SKU `json:"sku"`
}

func (h *Handler) returnHolding(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	res, err := h.service.MoveTokenToDisplayed(r.Context(), req.TokenID, req.SKU)
	if err != nil {
		h.fail(w, "return from token", err)
		return
	}
	httpx.JSON(w, http.StatusOK, res)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Warn("counter "+op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
