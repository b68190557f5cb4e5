package perf

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laxmi-pos/laxmi-pos/internal/app"
	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/orders"
	"github.com/laxmi-pos/laxmi-pos/internal/store/memory"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
)

var blouse = catalog.SKU{ProductID: "BLS-002", Size: "S", Color: "White"}

type seededServer struct {
	services *app.Services
	router   http.Handler
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSeededServer(tb testing.TB) seededServer {
	tb.Helper()
	tb.Setenv("STORE_DRIVER", "memory")
	tb.Setenv("RATE_LIMIT_PER_MINUTE", "1000000")
	cfg, err := app.LoadConfig()
	if err != nil {
		tb.Fatalf("load config: %v", err)
	}
	svc := app.NewServices(cfg, app.MemoryBackend(memory.New()), app.Caches{})
	ctx := context.Background()
	if _, err := svc.Catalog.Admit(ctx, catalog.AdmitInput{SKU: blouse, Name: "Linen Blouse", UnitPrice: decimal.NewFromInt(650)}); err != nil {
		tb.Fatalf("admit: %v", err)
	}
	order, err := svc.Orders.Place(ctx, []orders.LineInput{{SKU: blouse, Quantity: 1_000_000}})
	if err != nil {
		tb.Fatalf("place: %v", err)
	}
	if err := svc.Orders.Receive(ctx, order.ID); err != nil {
		tb.Fatalf("receive: %v", err)
	}
	if _, err := svc.Counter.MoveStoredToDisplayed(ctx, blouse, 500_000); err != nil {
		tb.Fatalf("restock: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := svc.Tokens.AllocateTokenID(ctx); err != nil {
			tb.Fatalf("allocate: %v", err)
		}
	}
	return seededServer{services: svc, router: app.NewRouter(svc.RouterParams(discardLogger(), cfg))}
}

func (s seededServer) call(tb testing.TB, method, path string, body any, want int) []byte {
	tb.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			tb.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	if rr.Code != want {
		tb.Fatalf("%s %s: status %d body %s", method, path, rr.Code, rr.Body.String())
	}
	return rr.Body.Bytes()
}

// checkout claims a token, sells one blouse onto it, bills it and releases it.
func (s seededServer) checkout(tb testing.TB) {
	tb.Helper()
	var tok tokens.Token
	if err := json.Unmarshal(s.call(tb, http.MethodPost, "/api/tokens/claim", nil, http.StatusOK), &tok); err != nil {
		tb.Fatalf("decode token: %v", err)
	}
	s.call(tb, http.MethodPost, "/api/counter/sell", map[string]any{"token_id": tok.ID, "sku": blouse, "quantity": 1}, http.StatusOK)
	s.call(tb, http.MethodPost, "/api/invoices", map[string]any{"token_ids": []string{tok.ID}, "payment_mode": "cash"}, http.StatusCreated)
	s.call(tb, http.MethodPost, "/api/tokens/"+tok.ID+"/release", nil, http.StatusNoContent)
}

func TestCheckoutLatencyTargets(t *testing.T) {
	srv := newSeededServer(t)
	samples := make([]time.Duration, 0, 50)
	for i := 0; i < 50; i++ {
		start := time.Now()
		srv.checkout(t)
		samples = append(samples, time.Since(start))
	}
	if p95 := percentile95(samples); p95 > 250*time.Millisecond {
		t.Fatalf("checkout latency regression: p95=%s", p95)
	}
}

func BenchmarkCheckout(b *testing.B) {
	srv := newSeededServer(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		srv.checkout(b)
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
