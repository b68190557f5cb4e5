package catalog

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/laxmi-pos/laxmi-pos/internal/platform/httpx"
)

// Handler serves catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.list)
	r.Post("/products", h.admit)
	r.Get("/products/search", h.findByName)
	r.Put("/products/{productID}/description", h.updateDescription)
	r.Get("/products/{productID}/{size}/{color}", h.get)
	r.Put("/products/{productID}/{size}/{color}/price", h.updatePrice)
	r.Put("/products/{productID}/{size}/{color}/discount", h.updateDiscount)
}

// SKUParam reads the SKU from the productID, size and color route parameters.
func SKUParam(r *http.Request) SKU {
	return SKU{
		ProductID: chi.URLParam(r, "productID"),
		Size:      chi.URLParam(r, "size"),
		Color:     chi.URLParam(r, "color"),
	}.Normalize()
}

type admitRequest struct {
	SKU
	Name        string          `json:"name" validate:"required,max=128"`
	Description string          `json:"description" validate:"max=1024"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Discount    decimal.Decimal `json:"discount"`
}

func (h *Handler) admit(w http.ResponseWriter, r *http.Request) {
	var req admitRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.Admit(r.Context(), AdmitInput{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		Discount:    req.Discount,
	})
	if err != nil {
		h.fail(w, "admit product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListAll(r.Context())
	if err != nil {
		h.fail(w, "list products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.Get(r.Context(), SKUParam(r))
	if err != nil {
		h.fail(w, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) findByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		httpx.RespondError(w, httpx.FieldErrors{"name": "failed required"})
		return
	}
	ids, err := h.service.FindIDsByName(r.Context(), name)
	if err != nil {
		h.fail(w, "find products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product_ids": ids})
}

type amountRequest struct {
	Value decimal.Decimal `json:"value"`
}

func (h *Handler) updatePrice(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.UpdatePrice(r.Context(), SKUParam(r), req.Value)
	if err != nil {
		h.fail(w, "update price", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) updateDiscount(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	product, err := h.service.UpdateDiscount(r.Context(), SKUParam(r), req.Value)
	if err != nil {
		h.fail(w, "update discount", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

type descriptionRequest struct {
	Description string `json:"description" validate:"max=1024"`
}

func (h *Handler) updateDescription(w http.ResponseWriter, r *http.Request) {
	var req descriptionRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.UpdateDescription(r.Context(), chi.URLParam(r, "productID"), req.Description); err != nil {
		h.fail(w, "update description", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Warn("catalog "+op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
