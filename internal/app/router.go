package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/counter"
	"github.com/laxmi-pos/laxmi-pos/internal/dashboard"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/invoices"
	"github.com/laxmi-pos/laxmi-pos/internal/observability"
	"github.com/laxmi-pos/laxmi-pos/internal/orders"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
	"github.com/laxmi-pos/laxmi-pos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	CatalogHandler   *catalog.Handler
	InventoryHandler *inventory.Handler
	TokensHandler    *tokens.Handler
	CounterHandler   *counter.Handler
	OrdersHandler    *orders.Handler
	InvoicesHandler  *invoices.Handler
	DashboardHandler *dashboard.Handler

	JobHandler *jobs.Handler
	Metrics    *observability.Metrics
}

// NewRouter constructs the chi.Router with the admin API mounted under /api.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Route("/api", func(r chi.Router) {
		if params.CatalogHandler != nil {
			params.CatalogHandler.MountRoutes(r)
		}
		if params.InventoryHandler != nil {
			params.InventoryHandler.MountRoutes(r)
		}
		if params.TokensHandler != nil {
			params.TokensHandler.MountRoutes(r)
		}
		if params.CounterHandler != nil {
			params.CounterHandler.MountRoutes(r)
		}
		if params.OrdersHandler != nil {
			params.OrdersHandler.MountRoutes(r)
		}
		if params.InvoicesHandler != nil {
			params.InvoicesHandler.MountRoutes(r)
		}
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}
	})

	return r
}
