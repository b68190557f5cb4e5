package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	LookupRecord(ctx context.Context, sku catalog.SKU) (Record, error)
	ListRecords(ctx context.Context) ([]RecordView, error)
	ListLowStock(ctx context.Context) ([]RecordView, error)
	ListLog(ctx context.Context, filter TransactionFilter) ([]LogEntry, error)
	CountLog(ctx context.Context, filter TransactionFilter) (int, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service exposes inventory ledger operations.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	loc   *time.Location
	now   func() time.Time
}

// NewService constructs the inventory service. Date listings use loc; nil means UTC.
func NewService(repo RepositoryPort, audit AuditPort, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:  repo,
		audit: audit,
		loc:   loc,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// GetDisplayed returns the counter quantity of sku. A SKU without a record has none.
func (s *Service) GetDisplayed(ctx context.Context, sku catalog.SKU) (Quantity, error) {
	rec, err := s.lookup(ctx, sku)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: rec.Displayed, UnitType: catalog.UnitTypePieces}, nil
}

// GetStored returns the backroom quantity of sku. A SKU without a record has none.
func (s *Service) GetStored(ctx context.Context, sku catalog.SKU) (Quantity, error) {
	rec, err := s.lookup(ctx, sku)
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: rec.Stored, UnitType: catalog.UnitTypePieces}, nil
}

func (s *Service) lookup(ctx context.Context, sku catalog.SKU) (Record, error) {
	rec, err := s.repo.LookupRecord(ctx, sku.Normalize())
	if errors.Is(err, ErrRecordNotFound) {
		return Record{SKU: sku.Normalize()}, nil
	}
	return rec, err
}

// IsBelowThreshold reports whether stored stock is at or below the SKU's threshold.
func (s *Service) IsBelowThreshold(ctx context.Context, sku catalog.SKU) (bool, error) {
	rec, err := s.repo.LookupRecord(ctx, sku.Normalize())
	if err != nil {
		return false, err
	}
	return rec.BelowThreshold(), nil
}

// UpdateThreshold sets the replenishment threshold of sku.
func (s *Service) UpdateThreshold(ctx context.Context, sku catalog.SKU, value int64) (Record, error) {
	if value < 0 {
		return Record{}, ErrInvalidThreshold
	}
	sku = sku.Normalize()
	var updated Record
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		rec, err := tx.GetRecordForUpdate(ctx, sku)
		if err != nil {
			return err
		}
		rec.Threshold = value
		rec.UpdatedAt = s.now()
		if err := tx.SaveRecord(ctx, rec); err != nil {
			return err
		}
		updated = rec
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	s.record(ctx, "inventory:threshold", sku, map[string]any{"threshold": value})
	return updated, nil
}

// TransferStoredToDisplayed moves quantity units of sku from the backroom to the counter.
func (s *Service) TransferStoredToDisplayed(ctx context.Context, sku catalog.SKU, quantity int64) (Record, error) {
	return s.move(ctx, Movement{Type: TransactionInventoryToCounter, SKU: sku.Normalize(), Quantity: quantity})
}

// RemoveStored writes off quantity units of backroom stock.
func (s *Service) RemoveStored(ctx context.Context, sku catalog.SKU, quantity int64) (Record, error) {
	return s.move(ctx, Movement{Type: TransactionInventorySub, SKU: sku.Normalize(), Quantity: quantity})
}

func (s *Service) move(ctx context.Context, m Movement) (Record, error) {
	var (
		rec   Record
		entry LogEntry
	)
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		rec, entry, err = Apply(ctx, tx, m, s.now())
		return err
	})
	if err != nil {
		return Record{}, err
	}
	s.record(ctx, "inventory:"+string(m.Type), m.SKU, map[string]any{
		"transaction_id": entry.ID,
		"quantity":       m.Quantity,
	})
	return rec, nil
}

// LogTransaction appends a log entry without touching quantities.
func (s *Service) LogTransaction(ctx context.Context, typ TransactionType, sku catalog.SKU, quantity int64) (LogEntry, error) {
	var entry LogEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		entry, err = Post(ctx, tx, typ, sku.Normalize(), quantity, s.now())
		return err
	})
	return entry, err
}

// ListInventory returns all records joined with their product names.
func (s *Service) ListInventory(ctx context.Context) ([]RecordView, error) {
	return s.repo.ListRecords(ctx)
}

// ListLowStock returns the records needing replenishment.
func (s *Service) ListLowStock(ctx context.Context) ([]RecordView, error) {
	return s.repo.ListLowStock(ctx)
}

// ListTransactions returns one page of the whole log.
func (s *Service) ListTransactions(ctx context.Context, page, perPage int) ([]LogEntry, shared.Pagination, error) {
	total, err := s.repo.CountLog(ctx, TransactionFilter{})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	p := shared.NewPagination(page, perPage, total)
	entries, err := s.repo.ListLog(ctx, TransactionFilter{
		Limit:  p.PerPage,
		Offset: p.Offset(),
	})
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return entries, p, nil
}

// ListTransactionsByDate returns the log entries of one calendar day in the store timezone.
func (s *Service) ListTransactionsByDate(ctx context.Context, day time.Time) ([]LogEntry, error) {
	from, to := shared.DayRange(day, s.loc)
	return s.repo.ListLog(ctx, TransactionFilter{From: from, To: to})
}

// ListTransactionsForSKUByDate narrows ListTransactionsByDate to one SKU.
func (s *Service) ListTransactionsForSKUByDate(ctx context.Context, sku catalog.SKU, day time.Time) ([]LogEntry, error) {
	from, to := shared.DayRange(day, s.loc)
	sku = sku.Normalize()
	return s.repo.ListLog(ctx, TransactionFilter{SKU: &sku, From: from, To: to})
}

func (s *Service) record(ctx context.Context, action string, sku catalog.SKU, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "inventory",
		EntityID: sku.String(),
		Meta:     meta,
	})
}
