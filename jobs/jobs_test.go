package jobs_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/dashboard"
	jobmetrics "github.com/laxmi-pos/laxmi-pos/internal/jobs"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/orders"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/cache"
	"github.com/laxmi-pos/laxmi-pos/internal/store/memory"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
	"github.com/laxmi-pos/laxmi-pos/jobs"
)

var lehenga = catalog.SKU{ProductID: "LHG-003", Size: "L", Color: "Maroon"}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	cat := catalog.NewService(store.Catalog(), nil, catalog.ServiceConfig{})
	_, err := cat.Admit(ctx, catalog.AdmitInput{
		SKU: lehenga, Name: "Lehenga", UnitPrice: decimal.NewFromInt(900),
	})
	require.NoError(t, err)
	ord := orders.NewService(store.Orders(), nil, orders.ServiceConfig{})
	order, err := ord.Place(ctx, []orders.LineInput{{SKU: lehenga, Quantity: 3}})
	require.NoError(t, err)
	require.NoError(t, ord.Receive(ctx, order.ID))
	return store
}

func TestLowStockScanSetsGauge(t *testing.T) {
	store := seededStore(t)
	metrics := jobmetrics.NewMetrics(prometheus.NewRegistry())
	stock := inventory.NewService(store.Inventory(), nil, time.UTC)

	job := jobs.NewLowStockScanJob(stock, nil, metrics)
	require.NoError(t, job.Handle(context.Background(), jobs.NewLowStockScanTask()))

	low, err := stock.ListLowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, lehenga, low[0].SKU)
}

func TestLowStockScanRequiresStock(t *testing.T) {
	var job *jobs.LowStockScanJob
	require.Error(t, job.Handle(context.Background(), jobs.NewLowStockScanTask()))
}

func TestDashboardWarmupFillsCache(t *testing.T) {
	store := seededStore(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	summaries := cache.NewVersioned(client, "dashboard", time.Minute)
	svc := dashboard.NewService(store.Dashboard(), store.Inventory(), tokens.NewService(store.Tokens(), nil, 5), summaries, time.UTC)

	job := jobs.NewDashboardWarmupJob(svc, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	require.NoError(t, job.Handle(context.Background(), jobs.NewDashboardWarmupTask()))
	require.NotEmpty(t, mr.Keys())

	summary, err := svc.Summary(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 1, summary.Products)
	require.Equal(t, 1, summary.OrdersReceived)
}

type recordingPurger struct {
	retention time.Duration
	removed   int64
}

func (p *recordingPurger) Cleanup(_ context.Context, olderThan time.Duration) (int64, error) {
	p.retention = olderThan
	return p.removed, nil
}

func TestIdempotencyCleanupRetention(t *testing.T) {
	purger := &recordingPurger{removed: 4}
	job := jobs.NewIdempotencyCleanupJob(purger, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := jobs.NewIdempotencyCleanupTask(0)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, jobs.DefaultIdempotencyRetention, purger.retention)

	task, err = jobs.NewIdempotencyCleanupTask(24 * time.Hour)
	require.NoError(t, err)
	var payload jobs.IdempotencyCleanupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, 24, payload.RetentionHours)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, 24*time.Hour, purger.retention)

	err = job.Handle(context.Background(), asynq.NewTask(jobs.TaskIdempotencyCleanup, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestIdempotencyCleanupKeepsFreshKeys(t *testing.T) {
	store := memory.New()
	keys := store.Idempotency()
	require.NoError(t, keys.CheckAndInsert(context.Background(), "place-1", "orders"))

	job := jobs.NewIdempotencyCleanupJob(keys, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := jobs.NewIdempotencyCleanupTask(time.Hour)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Error(t, keys.CheckAndInsert(context.Background(), "place-1", "orders"))
}

func TestNewTaskKnowsEveryType(t *testing.T) {
	for _, typ := range jobs.TaskTypes() {
		task, err := jobs.NewTask(typ)
		require.NoError(t, err)
		require.Equal(t, typ, task.Type())
	}
	_, err := jobs.NewTask("email:send")
	require.Error(t, err)
}

func TestNewWorkerValidatesCron(t *testing.T) {
	opts := asynq.RedisClientOpt{Addr: "127.0.0.1:0"}
	noop := func(context.Context, *asynq.Task) error { return nil }

	schedule, err := jobs.StoreSchedule(0)
	require.NoError(t, err)
	require.Len(t, schedule, 3)
	require.Equal(t, jobs.TaskIdempotencyCleanup, schedule[2].Task.Type())

	w, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: opts,
		Handlers:  []jobs.TaskHandler{{Type: jobs.TaskLowStockScan, Handler: noop}},
		Cron:      schedule,
	})
	require.NoError(t, err)
	require.NotNil(t, w)

	_, err = jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: opts,
		Cron:      []jobs.CronRegistration{{Spec: "every so often", Task: jobs.NewLowStockScanTask()}},
	})
	require.ErrorContains(t, err, "inventory:low_stock_scan")

	_, err = jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: opts,
		Handlers:  []jobs.TaskHandler{{Type: jobs.TaskDashboardWarmup}},
	})
	require.Error(t, err)
}
