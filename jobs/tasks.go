package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan scans inventory for SKUs at or below their threshold.
	TaskLowStockScan = "inventory:low_stock_scan"
	// TaskDashboardWarmup rebuilds the cached dashboard summary.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskIdempotencyCleanup purges expired idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// DefaultIdempotencyRetention is how long placement keys are remembered.
const DefaultIdempotencyRetention = 72 * time.Hour

// IdempotencyCleanupPayload configures a cleanup run.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewLowStockScanTask constructs the low-stock scan task.
func NewLowStockScanTask() *asynq.Task {
	return asynq.NewTask(TaskLowStockScan, nil)
}

// NewDashboardWarmupTask constructs the dashboard warmup task.
func NewDashboardWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardWarmup, nil)
}

// NewIdempotencyCleanupTask constructs a cleanup task; non-positive retention means the default.
func NewIdempotencyCleanupTask(retention time.Duration) (*asynq.Task, error) {
	if retention <= 0 {
		retention = DefaultIdempotencyRetention
	}
	data, err := json.Marshal(IdempotencyCleanupPayload{RetentionHours: int(retention / time.Hour)})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}

// NewTask builds a task of a known type with its default payload.
func NewTask(taskType string) (*asynq.Task, error) {
	switch taskType {
	case TaskLowStockScan:
		return NewLowStockScanTask(), nil
	case TaskDashboardWarmup:
		return NewDashboardWarmupTask(), nil
	case TaskIdempotencyCleanup:
		return NewIdempotencyCleanupTask(0)
	default:
		return nil, fmt.Errorf("jobs: unknown task type %q", taskType)
	}
}

// TaskTypes lists every task the worker understands.
func TaskTypes() []string {
	return []string{TaskLowStockScan, TaskDashboardWarmup, TaskIdempotencyCleanup}
}
