package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/laxmi-pos/laxmi-pos/internal/app"
	"github.com/laxmi-pos/laxmi-pos/internal/observability"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/cache"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/db"
	"github.com/laxmi-pos/laxmi-pos/internal/store/memory"
	"github.com/laxmi-pos/laxmi-pos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	var backend app.Backend
	switch cfg.StoreDriver {
	case app.DriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		backend = app.MemoryBackend(memory.New())
	default:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			logger.Error("connect postgres", slog.Any("error", err))
			os.Exit(1)
		}
		defer pool.Close()
		backend = app.PostgresBackend(pool)
	}

	var caches app.Caches
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
	} else {
		defer closeRedis(logger, redisClient)
		caches.Catalog = cache.NewVersioned(redisClient, "catalog", cfg.CacheTTL)
		caches.Dashboard = cache.NewVersioned(redisClient, "dashboard", cfg.CacheTTL)
	}

	services := app.NewServices(cfg, backend, caches)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	params := services.RouterParams(logger, cfg)
	params.JobHandler = jobs.NewHandler(inspector, logger)
	params.Metrics = observability.NewMetrics()
	router := app.NewRouter(params)

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func closeRedis(logger *slog.Logger, client *redis.Client) {
	if err := client.Close(); err != nil {
		logger.Warn("redis close", slog.Any("error", err))
	}
}
