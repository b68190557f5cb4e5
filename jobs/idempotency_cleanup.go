package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/laxmi-pos/laxmi-pos/internal/jobs"
)

// KeyPurger removes idempotency keys older than a retention window.
type KeyPurger interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyCleanupJob purges expired idempotency keys.
type IdempotencyCleanupJob struct {
	Keys    KeyPurger
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewIdempotencyCleanupJob wires dependencies for the cleanup handler.
func NewIdempotencyCleanupJob(keys KeyPurger, logger *slog.Logger, metrics *jobmetrics.Metrics) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{Keys: keys, Logger: logger, Metrics: metrics}
}

// Handle processes cleanup tasks.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Keys == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	retention := DefaultIdempotencyRetention
	if len(t.Payload()) > 0 {
		var payload IdempotencyCleanupPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.RetentionHours > 0 {
			retention = time.Duration(payload.RetentionHours) * time.Hour
		}
	}

	metrics := metricsOrDefault(j.Metrics)
	tracker := metrics.Track(TaskIdempotencyCleanup)
	defer func() { err = tracker.End(err) }()

	logger := jobLogger(j.Logger, TaskIdempotencyCleanup)
	removed, err := j.Keys.Cleanup(ctx, retention)
	if err != nil {
		logger.Error("purge idempotency keys", slog.Any("error", err))
		return err
	}
	metrics.AddPurgedKeys(removed)
	logger.Info("completed idempotency cleanup", slog.Int64("removed", removed), slog.Duration("retention", retention))
	return nil
}
