package invoices

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/laxmi-pos/laxmi-pos/internal/platform/httpx"
)

// Handler serves invoice endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices", h.listByDate)
	r.Post("/invoices", h.generate)
	r.Get("/invoices/lines", h.lines)
	r.Get("/invoices/{invoiceID}", h.details)
	r.Put("/invoices/{invoiceID}/discount", h.adjustDiscount)
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateInput
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.Generate(r.Context(), req)
	if err != nil {
		h.fail(w, "generate invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, inv)
}

func (h *Handler) listByDate(w http.ResponseWriter, r *http.Request) {
	day, err := httpx.QueryDate(r, "date", h.service.loc, time.Now())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	invoices, err := h.service.ListByDate(r.Context(), day)
	if err != nil {
		h.fail(w, "list invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func (h *Handler) lines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.ListLines(r.Context())
	if err != nil {
		h.fail(w, "list invoice lines", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lines)
}

func (h *Handler) details(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Details(r.Context(), chi.URLParam(r, "invoiceID"))
	if err != nil {
		h.fail(w, "invoice details", err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

type discountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handler) adjustDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	inv, err := h.service.AdjustDiscount(r.Context(), chi.URLParam(r, "invoiceID"), req.Amount)
	if err != nil {
		h.fail(w, "adjust discount", err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Warn("invoices "+op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
