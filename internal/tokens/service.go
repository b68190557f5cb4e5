package tokens

import (
	"context"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	LookupToken(ctx context.Context, id string) (Token, error)
	TokenHasHoldings(ctx context.Context, id string) (bool, error)
	ListTokens(ctx context.Context) ([]Token, error)
	ListPendingTokenIDs(ctx context.Context) ([]string, error)
	ListEmptyAssignedIDs(ctx context.Context) ([]string, error)
	ListHoldingViews(ctx context.Context, id string) ([]HoldingView, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages the token pool.
type Service struct {
	repo     RepositoryPort
	audit    AuditPort
	poolSize int
}

// NewService builds Service. A pool size outside 1..MaxPoolSize means MaxPoolSize.
func NewService(repo RepositoryPort, audit AuditPort, poolSize int) *Service {
	if poolSize <= 0 || poolSize > MaxPoolSize {
		poolSize = MaxPoolSize
	}
	return &Service{repo: repo, audit: audit, poolSize: poolSize}
}

// AllocateTokenID registers a new token under the lowest unused pool number.
func (s *Service) AllocateTokenID(ctx context.Context) (Token, error) {
	var token Token
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		numbers, err := tx.ListTokenNumbers(ctx)
		if err != nil {
			return err
		}
		n, ok := LowestFreeNumber(numbers, s.poolSize)
		if !ok {
			return ErrPoolExhausted
		}
		token = Token{ID: FormatTokenID(n), Number: n}
		return tx.InsertToken(ctx, token)
	})
	if err != nil {
		return Token{}, err
	}
	s.record(ctx, "tokens:allocate", token.ID, nil)
	return token, nil
}

// Claim hands out any unassigned token.
func (s *Service) Claim(ctx context.Context) (Token, error) {
	var token Token
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		t, err := tx.ClaimFreeToken(ctx)
		if err != nil {
			return err
		}
		t.Assigned = true
		t.InvoiceID = nil
		if err := tx.SaveToken(ctx, t); err != nil {
			return err
		}
		token = t
		return nil
	})
	if err != nil {
		return Token{}, err
	}
	s.record(ctx, "tokens:claim", token.ID, nil)
	return token, nil
}

// Release returns an empty token to the free pool. Billed tokens may be released to
// clear their invoice reference.
func (s *Service) Release(ctx context.Context, id string) error {
	id = NormalizeID(id)
	if id == "" {
		return ErrInvalidID
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := checkNoHoldings(ctx, tx, id); err != nil {
			return err
		}
		t, err := tx.GetTokenForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Free() {
			return ErrNotAssigned
		}
		t.Assigned = false
		t.InvoiceID = nil
		return tx.SaveToken(ctx, t)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "tokens:release", id, nil)
	return nil
}

// Deregister removes an unassigned, empty token from the pool.
func (s *Service) Deregister(ctx context.Context, id string) error {
	id = NormalizeID(id)
	if id == "" {
		return ErrInvalidID
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := checkNoHoldings(ctx, tx, id); err != nil {
			return err
		}
		t, err := tx.GetTokenForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t.Assigned {
			return ErrStillAssigned
		}
		return tx.DeleteToken(ctx, id)
	})
	if err != nil {
		return err
	}
	s.record(ctx, "tokens:deregister", id, nil)
	return nil
}

// AddHolding parks quantity units of sku on the token, accumulating with existing units.
// Stock levels are not touched; use the counter operations to move displayed stock.
func (s *Service) AddHolding(ctx context.Context, id string, sku catalog.SKU, quantity int64) (Holding, error) {
	id = NormalizeID(id)
	var h Holding
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetTokenForUpdate(ctx, id); err != nil {
			return err
		}
		var err error
		h, err = Hold(ctx, tx, id, sku.Normalize(), quantity)
		return err
	})
	return h, err
}

// PeekHolding returns the quantity of sku held by the token.
func (s *Service) PeekHolding(ctx context.Context, id string, sku catalog.SKU) (int64, error) {
	id = NormalizeID(id)
	var qty int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		h, err := tx.GetHoldingForUpdate(ctx, id, sku.Normalize())
		if err != nil {
			return err
		}
		qty = h.Quantity
		return nil
	})
	return qty, err
}

// RemoveAllHoldingsForSKU drops the token's holding of sku and returns the removed quantity.
func (s *Service) RemoveAllHoldingsForSKU(ctx context.Context, id string, sku catalog.SKU) (int64, error) {
	id = NormalizeID(id)
	var qty int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		qty, err = Unhold(ctx, tx, id, sku.Normalize())
		return err
	})
	return qty, err
}

// IsAssigned reports whether the token is handed out.
func (s *Service) IsAssigned(ctx context.Context, id string) (bool, error) {
	t, err := s.repo.LookupToken(ctx, NormalizeID(id))
	if err != nil {
		return false, err
	}
	return t.Assigned, nil
}

// HasHoldings reports whether the token holds any product.
func (s *Service) HasHoldings(ctx context.Context, id string) (bool, error) {
	return s.repo.TokenHasHoldings(ctx, NormalizeID(id))
}

// ListAllStatuses returns every token with its assignment state.
func (s *Service) ListAllStatuses(ctx context.Context) ([]Token, error) {
	return s.repo.ListTokens(ctx)
}

// ListTokensWithHoldings returns the pending tokens.
func (s *Service) ListTokensWithHoldings(ctx context.Context) ([]string, error) {
	return s.repo.ListPendingTokenIDs(ctx)
}

// ListEmptyAssigned returns assigned tokens that hold nothing yet.
func (s *Service) ListEmptyAssigned(ctx context.Context) ([]string, error) {
	return s.repo.ListEmptyAssignedIDs(ctx)
}

// ListHoldings returns the holdings of one token.
func (s *Service) ListHoldings(ctx context.Context, id string) ([]HoldingView, error) {
	id = NormalizeID(id)
	if _, err := s.repo.LookupToken(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListHoldingViews(ctx, id)
}

func (s *Service) record(ctx context.Context, action, id string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: action, Entity: "token", EntityID: id, Meta: meta})
}
