package orders

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/laxmi-pos/laxmi-pos/internal/platform/httpx"
)

// Handler serves supplier order endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.list)
	r.Post("/orders", h.place)
	r.Route("/orders/{orderID}", func(r chi.Router) {
		r.Get("/", h.details)
		r.Get("/status", h.status)
		r.Post("/cancel", h.cancel)
		r.Post("/receive", h.receive)
	})
}

type placeRequest struct {
	Lines []LineInput `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) place(w http.ResponseWriter, r *http.Request) {
	var req placeRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.service.PlaceOnce(r.Context(), r.Header.Get("Idempotency-Key"), req.Lines)
	if err != nil {
		h.fail(w, "place order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// list serves every order, or those placed between ?from= and ?to= when either is given.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("from") == "" && q.Get("to") == "" {
		orders, err := h.service.ListAll(r.Context())
		if err != nil {
			h.fail(w, "list orders", err)
			return
		}
		httpx.JSON(w, http.StatusOK, orders)
		return
	}
	now := time.Now()
	from, err := httpx.QueryDate(r, "from", h.service.loc, now)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	to, err := httpx.QueryDate(r, "to", h.service.loc, now)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	orders, err := h.service.ListBetweenDates(r.Context(), from, to)
	if err != nil {
		h.fail(w, "list orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) details(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Details(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.fail(w, "order details", err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Status(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.fail(w, "order status", err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Cancel(r.Context(), chi.URLParam(r, "orderID")); err != nil {
		h.fail(w, "cancel order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) receive(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Receive(r.Context(), chi.URLParam(r, "orderID")); err != nil {
		h.fail(w, "receive order", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if h.logger != nil {
		h.logger.Warn("orders "+op+" failed", slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
