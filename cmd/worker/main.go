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
	"github.com/laxmi-pos/laxmi-pos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	if cfg.StoreDriver != app.DriverPostgres {
		logger.Error("worker requires the postgres store", slog.String("store", cfg.StoreDriver))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	backend := app.PostgresBackend(pool)
	var caches app.Caches
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	} else {
		defer func(client *redis.Client) {
			if err := client.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}(redisClient)
		caches.Catalog = cache.NewVersioned(redisClient, "catalog", cfg.CacheTTL)
		caches.Dashboard = cache.NewVersioned(redisClient, "dashboard", cfg.CacheTTL)
	}
	services := app.NewServices(cfg, backend, caches)

	metrics := observability.NewMetrics()
	metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metrics.Handler(), ReadTimeout: 5 * time.Second}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("worker metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	lowStockJob := jobs.NewLowStockScanJob(services.Inventory, logger, metrics.Jobs())
	warmupJob := jobs.NewDashboardWarmupJob(services.Dashboard, logger, metrics.Jobs())
	cleanupJob := jobs.NewIdempotencyCleanupJob(backend.Idempotency, logger, metrics.Jobs())

	schedule, err := jobs.StoreSchedule(jobs.DefaultIdempotencyRetention)
	if err != nil {
		logger.Error("build schedule", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Location:  cfg.Location(),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLowStockScan, Handler: lowStockJob.Handle},
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskIdempotencyCleanup, Handler: cleanupJob.Handle},
		},
		Cron: schedule,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("metrics_addr", cfg.WorkerMetricsAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
