package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// Cron specs of the store's recurring jobs, evaluated in the store timezone.
const (
	LowStockScanSchedule       = "*/30 * * * *"
	DashboardWarmupSchedule    = "*/10 * * * *"
	IdempotencyCleanupSchedule = "0 3 * * *"
)

// TaskHandler binds a task type to its handler.
type TaskHandler struct {
	Type    string
	Handler asynq.HandlerFunc
}

// CronRegistration wires a cron expression to a prepared task.
type CronRegistration struct {
	Spec    string
	Task    *asynq.Task
	Options []asynq.Option
}

// WorkerConfig collects what the worker needs. Location defaults to UTC, Concurrency to 2.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Logger      *slog.Logger
	Handlers    []TaskHandler
	Cron        []CronRegistration
	Location    *time.Location
	Concurrency int
}

// Worker runs queued store jobs and, when cron entries exist, the scheduler that enqueues them.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

// StoreSchedule returns the recurring jobs of a running store.
func StoreSchedule(retention time.Duration) ([]CronRegistration, error) {
	cleanup, err := NewIdempotencyCleanupTask(retention)
	if err != nil {
		return nil, err
	}
	opts := []asynq.Option{asynq.MaxRetry(3), asynq.Queue(QueueDefault)}
	return []CronRegistration{
		{Spec: LowStockScanSchedule, Task: NewLowStockScanTask(), Options: opts},
		{Spec: DashboardWarmupSchedule, Task: NewDashboardWarmupTask(), Options: opts},
		{Spec: IdempotencyCleanupSchedule, Task: cleanup, Options: opts},
	}, nil
}

// NewWorker validates handlers and cron entries and builds the worker.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 2
	}
	logger := jobLogger(cfg.Logger, "worker")

	mux := asynq.NewServeMux()
	for _, h := range cfg.Handlers {
		if h.Type == "" || h.Handler == nil {
			return nil, fmt.Errorf("jobs: incomplete handler for %q", h.Type)
		}
		mux.HandleFunc(h.Type, h.Handler)
	}

	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{QueueDefault: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(_ context.Context, task *asynq.Task, err error) {
			logger.Warn("job failed", slog.String("task", task.Type()), slog.Any("error", err))
		}),
	})

	var scheduler *asynq.Scheduler
	if len(cfg.Cron) > 0 {
		scheduler = asynq.NewScheduler(cfg.RedisOpts, &asynq.SchedulerOpts{Location: cfg.Location})
		for _, entry := range cfg.Cron {
			if entry.Task == nil {
				return nil, fmt.Errorf("jobs: cron %q has no task", entry.Spec)
			}
			if _, err := scheduler.Register(entry.Spec, entry.Task, entry.Options...); err != nil {
				return nil, fmt.Errorf("jobs: schedule %s %q: %w", entry.Task.Type(), entry.Spec, err)
			}
		}
	}

	return &Worker{server: srv, mux: mux, scheduler: scheduler, logger: logger}, nil
}

// Run processes jobs until ctx is cancelled or the server stops.
func (w *Worker) Run(ctx context.Context) error {
	if w == nil {
		return errors.New("jobs: worker not configured")
	}
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("jobs: start scheduler: %w", err)
		}
		defer w.scheduler.Shutdown()
	}

	errCh := make(chan error, 1)
	go func() { errCh <- w.server.Run(w.mux) }()

	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
