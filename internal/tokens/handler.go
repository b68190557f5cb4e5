package tokens

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/httpx"
)

// Handler serves token pool endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers token routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/tokens", h.list)
	r.Post("/tokens", h.allocate)
	r.Post("/tokens/claim", h.claim)
	r.Get("/tokens/pending", h.pending)
	r.Get("/tokens/empty", h.empty)
	r.Route("/tokens/{tokenID}", func(r chi.Router) {
		r.Get("/", h.status)
		r.Delete("/", h.deregister)
		r.Post("/release", h.release)
		r.Get("/holdings", h.holdings)
		r.Get("/holdings/{productID}/{size}/{color}", h.peek)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.service.ListAllStatuses(r.Context())
	if err != nil {
		h.fail(w, "list tokens", err)
		return
	}
	httpx.JSON(w, http.StatusOK, tokens)
}

func (h *Handler) allocate(w http.ResponseWriter, r *http.Request) {
	token, err := h.service.AllocateTokenID(r.Context())
	if err != nil {
		h.fail(w, "allocate token", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, token)
}

func (h *Handler) claim(w http.ResponseWriter, r *http.Request) {
	token, err := h.service.Claim(r.Context())
	if err != nil {
		h.fail(w, "claim token", err)
		return
	}
	httpx.JSON(w, http.StatusOK, token)
}

func (h *Handler) pending(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.ListTokensWithHoldings(r.Context())
	if err != nil {
		h.fail(w, "list pending tokens", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token_ids": ids})
}

func (h *Handler) empty(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.ListEmptyAssigned(r.Context())
	if err != nil {
		h.fail(w, "list empty tokens", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token_ids": ids})
}

type statusResponse struct {
	TokenID     string `json:"token_id"`
	Assigned    bool   `json:"assigned"`
	HasHoldings bool   `json:"has_holdings"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	id := NormalizeID(chi.URLParam(r, "tokenID"))
	assigned, err := h.service.IsAssigned(r.Context(), id)
	if err != nil {
		h.fail(w, "token status", err)
		return
	}
	held, err := h.service.HasHoldings(r.Context(), id)
	if err != nil {
		h.fail(w, "token status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, statusResponse{TokenID: id, Assigned: assigned, HasHoldings: held})
}

func (h *Handler) release(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Release(r.Context(), chi.URLParam(r, "tokenID")); err != nil {
		h.fail(w, "release token", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deregister(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Deregister(r.Context(), chi.URLParam(r, "tokenID")); err != nil {
		h.fail(w, "deregister token", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) holdings(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListHoldings(r.Context(), chi.URLParam(r, "tokenID"))
	if err != nil {
		h.fail(w, "list holdings", err)
		return
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) peek(w http.ResponseWriter, r *http.Request) {
	sku := catalog.SKUParam(r)
	qty, err := h.service.PeekHolding(r.Context(), chi.URLParam(r, "tokenID"), sku)
	if err != nil {
		h.fail(w, "peek holding", err)
		return
	}
	httpx.JSON(w, http.StatusOK, Holding{TokenID: NormalizeID(chi.URLParam(r, "tokenID")), SKU: sku, Quantity: qty})
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Warn("tokens "+op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
