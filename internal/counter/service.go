package counter

import (
	"context"
	"time"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
	"github.com/laxmi-pos/laxmi-pos/internal/tokens"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Result reports the outcome of one counter movement.
type Result struct {
	TransactionID string      `json:"transaction_id"`
	TokenID       string      `json:"token_id,omitempty"`
	SKU           catalog.SKU `json:"sku"`
	Quantity      int64       `json:"quantity"`
	Stored        int64       `json:"stored_quantity"`
	Displayed     int64       `json:"displayed_quantity"`
	Held          int64       `json:"held_quantity"`
}

// Service moves goods between the backroom, the counter and tokens.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	policy catalog.NamePolicy
	now    func() time.Time
}

// NewService builds Service. A nil policy admits every product.
func NewService(repo RepositoryPort, audit AuditPort, policy catalog.NamePolicy) *Service {
	if policy == nil {
		policy = catalog.AllowAll
	}
	return &Service{
		repo:   repo,
		audit:  audit,
		policy: policy,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) requireProduct(ctx context.Context, tx TxRepository, sku catalog.SKU) error {
	p, err := tx.GetProduct(ctx, sku)
	if err != nil {
		return err
	}
	if !s.policy(p.Name) {
		return catalog.ErrCategoryNotAllowed
	}
	return nil
}

// MoveDisplayedToToken sells quantity units from the counter onto an assigned token.
func (s *Service) MoveDisplayedToToken(ctx context.Context, tokenID string, sku catalog.SKU, quantity int64) (Result, error) {
	tokenID = tokens.NormalizeID(tokenID)
	sku = sku.Normalize()
	var res Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := s.requireProduct(ctx, tx, sku); err != nil {
			return err
		}
		if _, err := tokens.RequireAssigned(ctx, tx, tokenID); err != nil {
			return err
		}
		if quantity <= 0 {
			return inventory.ErrInvalidQuantity
		}
		rec, entry, err := inventory.Apply(ctx, tx, inventory.Movement{
			Type:     inventory.TransactionCounterSub,
			SKU:      sku,
			Quantity: quantity,
		}, s.now())
		if err != nil {
			return err
		}
		h, err := tokens.Hold(ctx, tx, tokenID, sku, quantity)
		if err != nil {
			return err
		}
		res = Result{
			TransactionID: entry.ID,
			TokenID:       tokenID,
			SKU:           sku,
			Quantity:      quantity,
			Stored:        rec.Stored,
			Displayed:     rec.Displayed,
			Held:          h.Quantity,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.record(ctx, "counter:sell", res)
	return res, nil
}

// MoveStoredToDisplayed restocks the counter from the backroom.
func (s *Service) MoveStoredToDisplayed(ctx context.Context, sku catalog.SKU, quantity int64) (Result, error) {
	sku = sku.Normalize()
	var res Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := s.requireProduct(ctx, tx, sku); err != nil {
			return err
		}
		rec, entry, err := inventory.Apply(ctx, tx, inventory.Movement{
			Type:     inventory.TransactionInventoryToCounter,
			SKU:      sku,
			Quantity: quantity,
		}, s.now())
		if err != nil {
			return err
		}
		res = Result{
			TransactionID: entry.ID,
			SKU:           sku,
			Quantity:      quantity,
			Stored:        rec.Stored,
			Displayed:     rec.Displayed,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.record(ctx, "counter:restock", res)
	return res, nil
}

// MoveTokenToDisplayed returns the token's whole holding of sku to the counter.
func (s *Service) MoveTokenToDisplayed(ctx context.Context, tokenID string, sku catalog.SKU) (Result, error) {
	tokenID = tokens.NormalizeID(tokenID)
	sku = sku.Normalize()
	var res Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetTokenForUpdate(ctx, tokenID); err != nil {
			return err
		}
		qty, err := tokens.Unhold(ctx, tx, tokenID, sku)
		if err != nil {
			return err
		}
		rec, entry, err := inventory.Apply(ctx, tx, inventory.Movement{
			Type:     inventory.TransactionCounterAdd,
			SKU:      sku,
			Quantity: qty,
		}, s.now())
		if err != nil {
			return err
		}
		res = Result{
			TransactionID: entry.ID,
			TokenID:       tokenID,
			SKU:           sku,
			Quantity:      qty,
			Stored:        rec.Stored,
			Displayed:     rec.Displayed,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	s.record(ctx, "counter:return", res)
	return res, nil
}

func (s *Service) record(ctx context.Context, action string, res Result) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "inventory",
		EntityID: res.SKU.String(),
		Meta: map[string]any{
			"transaction_id": res.TransactionID,
			"token_id":       res.TokenID,
			"quantity":       res.Quantity,
		},
	})
}
