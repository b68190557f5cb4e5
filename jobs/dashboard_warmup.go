package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/laxmi-pos/laxmi-pos/internal/dashboard"
	jobmetrics "github.com/laxmi-pos/laxmi-pos/internal/jobs"
)

// SummaryRefresher rebuilds the cached dashboard summary.
type SummaryRefresher interface {
	Refresh(ctx context.Context, now time.Time) (dashboard.Summary, error)
}

// DashboardWarmupJob keeps the dashboard summary cache warm.
type DashboardWarmupJob struct {
	Dashboard SummaryRefresher
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	clock     func() time.Time
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(svc SummaryRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboard: svc,
		Logger:    logger,
		Metrics:   metrics,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, _ *asynq.Task) (err error) {
	if j == nil || j.Dashboard == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	tracker := metricsOrDefault(j.Metrics).Track(TaskDashboardWarmup)
	defer func() { err = tracker.End(err) }()

	logger := jobLogger(j.Logger, TaskDashboardWarmup)
	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := j.now()
	summary, err := j.Dashboard.Refresh(ctx, start)
	if err != nil {
		logger.Error("refresh dashboard", slog.Any("error", err))
		return err
	}
	logger.Info("completed dashboard warmup",
		slog.Int("invoices_today", summary.Today.Invoices),
		slog.Int("low_stock", summary.LowStock),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}

func (j *DashboardWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
