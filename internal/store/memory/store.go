// Package memory is an in-process Ledger Store. Every unit of work runs on a private
// copy of the state which replaces the committed state only when the work succeeds.
// The transaction log is append-only and is not copied: a unit of work appends past the
// committed length, and a discarded unit of work leaves the committed length unchanged.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/invoices"
	"github.com/laxmi-pos/laxmi-pos/internal/orders"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
)

type state struct {
	products     map[catalog.SKU]catalog.Product
	records      map[catalog.SKU]inventory.Record
	log          []inventory.LogEntry
	tokens       map[string]tokens.Token
	holdings     map[string]map[catalog.SKU]int64
	orders       map[string]orders.Order
	orderLines   map[string][]orders.Line
	invoices     map[string]invoices.Invoice
	invoiceLines map[string][]invoices.Line
	sequences    map[string]int64
}

func newState() *state {
	return &state{
		products:     map[catalog.SKU]catalog.Product{},
		records:      map[catalog.SKU]inventory.Record{},
		tokens:       map[string]tokens.Token{},
		holdings:     map[string]map[catalog.SKU]int64{},
		orders:       map[string]orders.Order{},
		orderLines:   map[string][]orders.Line{},
		invoices:     map[string]invoices.Invoice{},
		invoiceLines: map[string][]invoices.Line{},
		sequences:    map[string]int64{},
	}
}

func (s *state) clone() *state {
	c := &state{
		products:     maps.Clone(s.products),
		records:      maps.Clone(s.records),
		log:          s.log,
		tokens:       maps.Clone(s.tokens),
		holdings:     make(map[string]map[catalog.SKU]int64, len(s.holdings)),
		orders:       maps.Clone(s.orders),
		orderLines:   make(map[string][]orders.Line, len(s.orderLines)),
		invoices:     maps.Clone(s.invoices),
		invoiceLines: make(map[string][]invoices.Line, len(s.invoiceLines)),
		sequences:    maps.Clone(s.sequences),
	}
	for id, held := range s.holdings {
		c.holdings[id] = maps.Clone(held)
	}
	for id, lines := range s.orderLines {
		c.orderLines[id] = slices.Clone(lines)
	}
	for id, lines := range s.invoiceLines {
		c.invoiceLines[id] = slices.Clone(lines)
	}
	return c
}

// Store holds the committed state shared by every repository adapter.
type Store struct {
	mu    sync.RWMutex
	state *state
	now   func() time.Time

	auditMu sync.Mutex
	audit   []shared.AuditLog

	idemMu sync.Mutex
	idem   map[string]idempotencyEntry
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
		idem:  map[string]idempotencyEntry{},
	}
}

// withTx serialises units of work. fn must not open another unit of work.
func (s *Store) withTx(ctx context.Context, fn func(*memTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.state.clone()
	if err := fn(&memTx{st: work, now: s.now}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = work
	return nil
}

// read runs fn against the committed state.
func (s *Store) read(fn func(*state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.state)
}

// Catalog returns the catalog repository adapter.
func (s *Store) Catalog() *CatalogRepository { return &CatalogRepository{s: s} }

// Inventory returns the inventory repository adapter.
func (s *Store) Inventory() *InventoryRepository { return &InventoryRepository{s: s} }

// Tokens returns the token repository adapter.
func (s *Store) Tokens() *TokenRepository { return &TokenRepository{s: s} }

// Counter returns the counter repository adapter.
func (s *Store) Counter() *CounterRepository { return &CounterRepository{s: s} }

// Orders returns the order repository adapter.
func (s *Store) Orders() *OrderRepository { return &OrderRepository{s: s} }

// Invoices returns the invoice repository adapter.
func (s *Store) Invoices() *InvoiceRepository { return &InvoiceRepository{s: s} }

// Dashboard returns the dashboard aggregate adapter.
func (s *Store) Dashboard() *DashboardRepository { return &DashboardRepository{s: s} }
