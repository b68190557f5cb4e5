package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/httpx"
)

// Handler serves inventory endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventory", h.list)
	r.Get("/inventory/low-stock", h.lowStock)
	r.Get("/inventory/transactions", h.transactions)
	r.Get("/inventory/transactions/daily", h.transactionsByDate)
	r.Route("/inventory/{productID}/{size}/{color}", func(r chi.Router) {
		r.Get("/", h.levels)
		r.Get("/transactions", h.skuTransactionsByDate)
		r.Put("/threshold", h.updateThreshold)
		r.Post("/transfer", h.transfer)
		r.Post("/write-off", h.writeOff)
	})
}

type levelsResponse struct {
	SKU            catalog.SKU `json:"sku"`
	Stored         Quantity    `json:"stored"`
	Displayed      Quantity    `json:"displayed"`
	BelowThreshold bool        `json:"below_threshold"`
}

func (h *Handler) levels(w http.ResponseWriter, r *http.Request) {
	sku := catalog.SKUParam(r)
	stored, err := h.service.GetStored(r.Context(), sku)
	if err != nil {
		h.fail(w, "get stored", err)
		return
	}
	displayed, err := h.service.GetDisplayed(r.Context(), sku)
	if err != nil {
		h.fail(w, "get displayed", err)
		return
	}
	below, err := h.service.IsBelowThreshold(r.Context(), sku)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		h.fail(w, "check threshold", err)
		return
	}
	httpx.JSON(w, http.StatusOK, levelsResponse{SKU: sku, Stored: stored, Displayed: displayed, BelowThreshold: below})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListInventory(r.Context())
	if err != nil {
		h.fail(w, "list inventory", err)
		return
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	views, err := h.service.ListLowStock(r.Context())
	if err != nil {
		h.fail(w, "list low stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) transactions(w http.ResponseWriter, r *http.Request) {
	entries, page, err := h.service.ListTransactions(r.Context(), httpx.QueryInt(r, "page", 1), httpx.QueryInt(r, "per_page", 50))
	if err != nil {
		h.fail(w, "list transactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": entries, "pagination": page})
}

func (h *Handler) transactionsByDate(w http.ResponseWriter, r *http.Request) {
	day, err := httpx.QueryDate(r, "date", h.service.loc, time.Now())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.ListTransactionsByDate(r.Context(), day)
	if err != nil {
		h.fail(w, "list transactions by date", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) skuTransactionsByDate(w http.ResponseWriter, r *http.Request) {
	day, err := httpx.QueryDate(r, "date", h.service.loc, time.Now())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.ListTransactionsForSKUByDate(r.Context(), catalog.SKUParam(r), day)
	if err != nil {
		h.fail(w, "list sku transactions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}

type thresholdRequest struct {
	Threshold int64 `json:"threshold" validate:"gte=0"`
}

func (h *Handler) updateThreshold(w http.ResponseWriter, r *http.Request) {
	var req thresholdRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.UpdateThreshold(r.Context(), catalog.SKUParam(r), req.Threshold)
	if err != nil {
		h.fail(w, "update threshold", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

type quantityRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *Handler) transfer(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.TransferStoredToDisplayed(r.Context(), catalog.SKUParam(r), req.Quantity)
	if err != nil {
		h.fail(w, "transfer stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) writeOff(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rec, err := h.service.RemoveStored(r.Context(), catalog.SKUParam(r), req.Quantity)
	if err != nil {
		h.fail(w, "write off stock", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Warn("inventory "+op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
