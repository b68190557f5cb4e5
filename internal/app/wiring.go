package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/counter"
	"github.com/laxmi-pos/laxmi-pos/internal/dashboard"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/invoices"
	"github.com/laxmi-pos/laxmi-pos/internal/orders"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
	"github.com/laxmi-pos/laxmi-pos/internal/store/memory"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyKeys remembers processed request keys.
type IdempotencyKeys interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Backend bundles the Ledger Store adapters behind every module.
type Backend struct {
	Catalog     catalog.RepositoryPort
	Inventory   inventory.RepositoryPort
	Tokens      tokens.RepositoryPort
	Counter     counter.RepositoryPort
	Orders      orders.RepositoryPort
	Invoices    invoices.RepositoryPort
	Dashboard   dashboard.RepositoryPort
	Audit       AuditRecorder
	Idempotency IdempotencyKeys
}

// PostgresBackend builds the pgx repositories over pool.
func PostgresBackend(pool *pgxpool.Pool) Backend {
	return Backend{
		Catalog:     catalog.NewRepository(pool),
		Inventory:   inventory.NewRepository(pool),
		Tokens:      tokens.NewRepository(pool),
		Counter:     counter.NewRepository(pool),
		Orders:      orders.NewRepository(pool),
		Invoices:    invoices.NewRepository(pool),
		Dashboard:   dashboard.NewRepository(pool),
		Audit:       shared.NewAuditLogger(pool),
		Idempotency: shared.NewIdempotencyStore(pool),
	}
}

// MemoryBackend builds the in-process adapters over store.
func MemoryBackend(store *memory.Store) Backend {
	return Backend{
		Catalog:     store.Catalog(),
		Inventory:   store.Inventory(),
		Tokens:      store.Tokens(),
		Counter:     store.Counter(),
		Orders:      store.Orders(),
		Invoices:    store.Invoices(),
		Dashboard:   store.Dashboard(),
		Audit:       store.Audit(),
		Idempotency: store.Idempotency(),
	}
}

// Caches are the optional redis-backed caches. Nil fields disable caching.
type Caches struct {
	Catalog   catalog.ListingCache
	Dashboard dashboard.Cache
}

// Services holds one service per module.
type Services struct {
	Catalog   *catalog.Service
	Inventory *inventory.Service
	Tokens    *tokens.Service
	Counter   *counter.Service
	Orders    *orders.Service
	Invoices  *invoices.Service
	Dashboard *dashboard.Service
}

// NewServices wires every module service from configuration.
func NewServices(cfg *Config, b Backend, caches Caches) *Services {
	loc := cfg.Location()
	var policy catalog.NamePolicy = catalog.AllowAll
	if keywords := cfg.Keywords(); len(keywords) > 0 {
		policy = catalog.KeywordPolicy(keywords...)
	}
	threshold := cfg.DefaultStoreThreshold
	tokenSvc := tokens.NewService(b.Tokens, b.Audit, cfg.TokenPoolSize)
	return &Services{
		Catalog: catalog.NewService(b.Catalog, b.Audit, catalog.ServiceConfig{
			DefaultThreshold: &threshold,
			Policy:           policy,
			Cache:            caches.Catalog,
		}),
		Inventory: inventory.NewService(b.Inventory, b.Audit, loc),
		Tokens:    tokenSvc,
		Counter:   counter.NewService(b.Counter, b.Audit, policy),
		Orders: orders.NewService(b.Orders, b.Audit, orders.ServiceConfig{
			Location:                loc,
			RaiseThresholdOnReceive: cfg.RaiseThresholdOnReceive,
			Idempotency:             b.Idempotency,
		}),
		Invoices: invoices.NewService(b.Invoices, b.Audit, invoices.ServiceConfig{
			TaxRate:  cfg.Tax(),
			Location: loc,
		}),
		Dashboard: dashboard.NewService(b.Dashboard, b.Inventory, tokenSvc, caches.Dashboard, loc),
	}
}

// RouterParams builds the handler set for NewRouter.
func (s *Services) RouterParams(logger *slog.Logger, cfg *Config) RouterParams {
	return RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalog.NewHandler(logger, s.Catalog),
		InventoryHandler: inventory.NewHandler(logger, s.Inventory),
		TokensHandler:    tokens.NewHandler(logger, s.Tokens),
		CounterHandler:   counter.NewHandler(logger, s.Counter),
		OrdersHandler:    orders.NewHandler(logger, s.Orders),
		InvoicesHandler:  invoices.NewHandler(logger, s.Invoices),
		DashboardHandler: dashboard.NewHandler(logger, s.Dashboard),
	}
}
