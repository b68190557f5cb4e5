package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	jobmetrics "github.com/laxmi-pos/laxmi-pos/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// StockLister lists SKUs needing replenishment.
type StockLister interface {
	ListLowStock(ctx context.Context) ([]inventory.RecordView, error)
}

// LowStockScanJob reports SKUs at or below their store threshold.
type LowStockScanJob struct {
	Stock   StockLister
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(stock StockLister, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Stock: stock, Logger: logger, Metrics: metrics}
}

// Handle processes low-stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, _ *asynq.Task) (err error) {
	if j == nil || j.Stock == nil {
		return errors.New("low stock scan: handler not configured")
	}
	metrics := metricsOrDefault(j.Metrics)
	tracker := metrics.Track(TaskLowStockScan)
	defer func() { err = tracker.End(err) }()

	logger := jobLogger(j.Logger, TaskLowStockScan)
	records, err := j.Stock.ListLowStock(ctx)
	if err != nil {
		logger.Error("list low stock", slog.Any("error", err))
		return err
	}
	metrics.SetLowStock(len(records))
	for _, rec := range records {
		logger.Warn("sku below threshold",
			slog.String("sku", rec.SKU.String()),
			slog.String("name", rec.Name),
			slog.Int64("stored", rec.Stored),
			slog.Int64("threshold", rec.Threshold),
		)
	}
	logger.Info("completed low stock scan", slog.Int("skus", len(records)))
	return nil
}

func metricsOrDefault(m *jobmetrics.Metrics) *jobmetrics.Metrics {
	if m != nil {
		return m
	}
	return defaultJobMetrics
}

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", job))
}
