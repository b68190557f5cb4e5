package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	LookupOrder(ctx context.Context, id string) (Order, error)
	ListOrders(ctx context.Context, from, to time.Time) ([]Order, error)
	ListLineViews(ctx context.Context, id string) ([]LineView, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// IdempotencyPort guards against replayed placement requests.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	Location                *time.Location
	RaiseThresholdOnReceive bool
	Idempotency             IdempotencyPort
}

// Service manages supplier orders.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency IdempotencyPort
	loc         *time.Location
	raise       bool
	now         func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, cfg ServiceConfig) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:        repo,
		audit:       audit,
		idempotency: cfg.Idempotency,
		loc:         loc,
		raise:       cfg.RaiseThresholdOnReceive,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Place records a new order. Duplicate SKUs are merged into one line.
func (s *Service) Place(ctx context.Context, lines []LineInput) (Order, error) {
	merged, err := MergeLines(lines)
	if err != nil {
		return Order{}, err
	}
	var order Order
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, l := range merged {
			if _, err := tx.GetProduct(ctx, l.SKU); err != nil {
				if errors.Is(err, catalog.ErrNotFound) {
					return ErrSkuNotFound
				}
				return err
			}
		}
		seq, err := tx.NextOrderSeq(ctx)
		if err != nil {
			return err
		}
		order = Order{Seq: seq, ID: FormatOrderID(seq), OrderDate: s.now()}
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		for _, l := range merged {
			if err := tx.InsertOrderLine(ctx, Line{OrderID: order.ID, SKU: l.SKU, Quantity: l.Quantity}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	s.record(ctx, "orders:place", order.ID, map[string]any{"lines": len(merged)})
	return order, nil
}

// PlaceOnce is Place guarded by a client supplied idempotency key. A replayed key fails
// with shared.ErrIdempotencyConflict; a failed placement frees the key again.
func (s *Service) PlaceOnce(ctx context.Context, key string, lines []LineInput) (Order, error) {
	key = strings.TrimSpace(key)
	if key == "" || s.idempotency == nil {
		return s.Place(ctx, lines)
	}
	if err := s.idempotency.CheckAndInsert(ctx, key, "orders.place"); err != nil {
		return Order{}, err
	}
	order, err := s.Place(ctx, lines)
	if err != nil {
		_ = s.idempotency.Delete(ctx, key)
		return Order{}, err
	}
	return order, nil
}

// Status reports the terminal flags of an order.
func (s *Service) Status(ctx context.Context, id string) (StatusView, error) {
	o, err := s.repo.LookupOrder(ctx, normalizeID(id))
	if err != nil {
		return StatusView{}, err
	}
	return StatusView{OrderID: o.ID, Delivered: o.Delivered, Cancelled: o.Cancelled}, nil
}

// Cancel marks a pending order cancelled.
func (s *Service) Cancel(ctx context.Context, id string) error {
	id = normalizeID(id)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		o, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := o.Terminal(); err != nil {
			return err
		}
		o.Cancelled = true
		return tx.SaveOrder(ctx, o)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "orders:cancel", id, nil)
	return nil
}

// Receive books every line of a pending order into backroom stock and marks it delivered.
func (s *Service) Receive(ctx context.Context, id string) error {
	id = normalizeID(id)
	var received int
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		o, err := tx.GetOrderForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := o.Terminal(); err != nil {
			return err
		}
		lines, err := tx.ListOrderLines(ctx, id)
		if err != nil {
			return err
		}
		at := s.now()
		for _, l := range lines {
			if err := s.prepareRecord(ctx, tx, l, at); err != nil {
				return err
			}
			if _, _, err := inventory.Apply(ctx, tx, inventory.Movement{
				Type:     inventory.TransactionInventoryAdd,
				SKU:      l.SKU,
				Quantity: l.Quantity,
			}, at); err != nil {
				return err
			}
		}
		received = len(lines)
		o.Delivered = true
		return tx.SaveOrder(ctx, o)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "orders:receive", id, map[string]any{"lines": received})
	return nil
}

// prepareRecord makes sure l.SKU has an inventory record with an adequate threshold.
func (s *Service) prepareRecord(ctx context.Context, tx TxRepository, l Line, at time.Time) error {
	rec, err := tx.GetRecordForUpdate(ctx, l.SKU)
	if errors.Is(err, inventory.ErrRecordNotFound) {
		return tx.InsertRecord(ctx, inventory.Record{
			SKU:       l.SKU,
			Threshold: inventory.ReceiptThreshold(l.Quantity),
			UpdatedAt: at,
		})
	}
	if err != nil {
		return err
	}
	if !s.raise {
		return nil
	}
	raised := inventory.RaisedThreshold(rec.Threshold, l.Quantity)
	if raised == rec.Threshold {
		return nil
	}
	rec.Threshold = raised
	rec.UpdatedAt = at
	return tx.SaveRecord(ctx, rec)
}

// ListAll returns every order, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.repo.ListOrders(ctx, time.Time{}, time.Time{})
}

// ListBetweenDates returns orders placed from the start day through the end day inclusive.
func (s *Service) ListBetweenDates(ctx context.Context, start, end time.Time) ([]Order, error) {
	if end.Before(start) {
		start, end = end, start
	}
	from, to := shared.SpanRange(start, end, s.loc)
	return s.repo.ListOrders(ctx, from, to)
}

// Details loads an order with its lines.
func (s *Service) Details(ctx context.Context, id string) (Details, error) {
	id = normalizeID(id)
	o, err := s.repo.LookupOrder(ctx, id)
	if err != nil {
		return Details{}, err
	}
	lines, err := s.repo.ListLineViews(ctx, id)
	if err != nil {
		return Details{}, err
	}
	return Details{Order: o, Status: o.Status(), Lines: lines}, nil
}

func (s *Service) record(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "order", EntityID: id, Meta: meta})
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
