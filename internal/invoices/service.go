package invoices

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	LookupInvoice(ctx context.Context, id string) (Invoice, error)
	ListInvoices(ctx context.Context, from, to time.Time) ([]Invoice, error)
	ListInvoiceLines(ctx context.Context, id string) ([]Line, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	TaxRate  decimal.Decimal
	Location *time.Location
}

// Service bills tokens into invoices.
type Service struct {
	repo    RepositoryPort
	audit   AuditPort
	taxRate decimal.Decimal
	loc     *time.Location
	now     func() time.Time
}

// NewService builds Service. A zero tax rate is honoured; configure DefaultTaxRate explicitly.
func NewService(repo RepositoryPort, audit AuditPort, cfg ServiceConfig) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:    repo,
		audit:   audit,
		taxRate: cfg.TaxRate,
		loc:     loc,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Generate bills the holdings of every given token into one invoice and frees the tokens.
func (s *Service) Generate(ctx context.Context, input GenerateInput) (Invoice, error) {
	ids := uniqueTokenIDs(input.TokenIDs)
	mode := PaymentMode(strings.ToLower(strings.TrimSpace(string(input.PaymentMode))))
	var invoice Invoice
	var lineCount int
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, id := range ids {
			if _, err := tokens.RequireAssigned(ctx, tx, id); err != nil {
				if errors.Is(err, tokens.ErrNotAssigned) {
					return ErrTokenNotAssigned
				}
				return err
			}
		}
		holdings, err := tx.ListHoldingsForTokens(ctx, ids)
		if err != nil {
			return err
		}
		if len(holdings) == 0 {
			return ErrNoProducts
		}
		if !mode.Valid() {
			return ErrInvalidPaymentMode
		}
		seq, err := tx.NextInvoiceSeq(ctx)
		if err != nil {
			return err
		}
		invoice = Invoice{
			Seq:         seq,
			ID:          FormatInvoiceID(seq),
			InvoiceDate: s.now(),
			PaymentMode: mode,
			TokenIDs:    ids,
		}
		lines, totals, err := s.price(ctx, tx, invoice.ID, aggregate(holdings))
		if err != nil {
			return err
		}
		invoice.Total = totals.Total
		invoice.DiscountGiven = totals.Discount
		if err := tx.InsertInvoice(ctx, invoice); err != nil {
			return err
		}
		for _, l := range lines {
			if err := tx.InsertInvoiceLine(ctx, l); err != nil {
				return err
			}
		}
		lineCount = len(lines)
		return tokens.Bill(ctx, tx, ids, invoice.ID)
	})
	if err != nil {
		return Invoice{}, err
	}
	s.record(ctx, "invoices:generate", invoice.ID, map[string]any{
		"tokens":       ids,
		"lines":        lineCount,
		"total":        invoice.Total.StringFixed(2),
		"payment_mode": string(mode),
	})
	return invoice, nil
}

// price snapshots current catalog pricing for every aggregated SKU.
func (s *Service) price(ctx context.Context, tx TxRepository, invoiceID string, held []tokens.Holding) ([]Line, Totals, error) {
	totals := Totals{Total: decimal.Zero, Discount: decimal.Zero}
	lines := make([]Line, 0, len(held))
	for _, h := range held {
		p, err := tx.GetProduct(ctx, h.SKU)
		if err != nil {
			return nil, Totals{}, err
		}
		amounts := ComputeLine(h.Quantity, p.UnitPrice, p.Discount, s.taxRate)
		totals = totals.Add(amounts)
		lines = append(lines, Line{
			InvoiceID:       invoiceID,
			SKU:             h.SKU,
			Name:            p.Name,
			Quantity:        h.Quantity,
			UnitPrice:       p.UnitPrice,
			DiscountPercent: p.Discount,
			DiscountAmount:  amounts.Discount,
			TaxAmount:       amounts.Tax,
			LineTotal:       amounts.Total,
		})
	}
	return lines, totals, nil
}

// aggregate sums holdings per SKU across tokens, keeping first-seen SKU order.
func aggregate(holdings []tokens.Holding) []tokens.Holding {
	index := make(map[catalog.SKU]int, len(holdings))
	out := make([]tokens.Holding, 0, len(holdings))
	for _, h := range holdings {
		if i, ok := index[h.SKU]; ok {
			out[i].Quantity += h.Quantity
			continue
		}
		index[h.SKU] = len(out)
		out = append(out, tokens.Holding{SKU: h.SKU, Quantity: h.Quantity})
	}
	return out
}

func uniqueTokenIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = tokens.NormalizeID(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// AdjustDiscount overwrites the invoice's discount figure. The invoice total is left as billed.
func (s *Service) AdjustDiscount(ctx context.Context, id string, amount decimal.Decimal) (Invoice, error) {
	id = normalizeID(id)
	var updated Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if amount.IsNegative() {
			return ErrInvalidDiscount
		}
		inv.DiscountGiven = amount.Round(2)
		if err := tx.SaveInvoiceDiscount(ctx, id, inv.DiscountGiven); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	s.record(ctx, "invoices:discount", id, map[string]any{"discount_given": updated.DiscountGiven.StringFixed(2)})
	return updated, nil
}

// Details loads an invoice with its lines.
func (s *Service) Details(ctx context.Context, id string) (Details, error) {
	id = normalizeID(id)
	inv, err := s.repo.LookupInvoice(ctx, id)
	if err != nil {
		return Details{}, err
	}
	lines, err := s.repo.ListInvoiceLines(ctx, id)
	if err != nil {
		return Details{}, err
	}
	return Details{Invoice: inv, Lines: lines}, nil
}

// ListByDate returns the invoices of one calendar day in the store timezone.
func (s *Service) ListByDate(ctx context.Context, day time.Time) ([]Invoice, error) {
	from, to := shared.DayRange(day, s.loc)
	return s.repo.ListInvoices(ctx, from, to)
}

// ListLines returns every billed line, newest invoice first.
func (s *Service) ListLines(ctx context.Context) ([]Line, error) {
	return s.repo.ListInvoiceLines(ctx, "")
}

func (s *Service) record(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "invoice", EntityID: id, Meta: meta})
}

func normalizeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
