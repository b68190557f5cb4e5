package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	LookupProduct(ctx context.Context, sku SKU) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	FindProductIDsByName(ctx context.Context, name string) ([]string, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ListingCache caches the product listing between catalog mutations.
type ListingCache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) error
}

// Service coordinates catalog operations.
type Service struct {
	repo             RepositoryPort
	audit            AuditPort
	cache            ListingCache
	policy           NamePolicy
	defaultThreshold int64
	now              func() time.Time
}

// ServiceConfig groups optional settings. A nil DefaultThreshold means DefaultThreshold; a set 0 is kept.
type ServiceConfig struct {
	DefaultThreshold *int64
	Policy           NamePolicy
	Cache            ListingCache
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, cfg ServiceConfig) *Service {
	policy := cfg.Policy
	if policy == nil {
		policy = AllowAll
	}
	threshold := int64(DefaultThreshold)
	if cfg.DefaultThreshold != nil && *cfg.DefaultThreshold >= 0 {
		threshold = *cfg.DefaultThreshold
	}
	return &Service{
		repo:             repo,
		audit:            audit,
		cache:            cfg.Cache,
		policy:           policy,
		defaultThreshold: threshold,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Policy exposes the configured name policy for collaborating modules.
func (s *Service) Policy() NamePolicy {
	return s.policy
}

// Admit adds a SKU to the catalog together with an empty inventory record.
func (s *Service) Admit(ctx context.Context, input AdmitInput) (Product, error) {
	sku := input.SKU.Normalize()
	if !sku.Valid() {
		return Product{}, ErrInvalidSKU
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Product{}, ErrInvalidName
	}
	price, discount := RoundMoney(input.UnitPrice), RoundMoney(input.Discount)
	now := s.now()
	product := Product{
		SKU:         sku,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		UnitPrice:   price,
		UnitType:    UnitTypePieces,
		Discount:    discount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.GetProduct(ctx, sku); err == nil {
			return ErrDuplicateSKU
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := ValidatePrice(price); err != nil {
			return err
		}
		if err := ValidateDiscount(discount); err != nil {
			return err
		}
		if !s.policy(name) {
			return ErrCategoryNotAllowed
		}
		if err := tx.InsertProduct(ctx, product); err != nil {
			return err
		}
		return tx.CreateStockRecord(ctx, sku, s.defaultThreshold)
	})
	if err != nil {
		return Product{}, err
	}
	s.afterMutation(ctx, "catalog:admit", sku.String(), map[string]any{
		"name":       name,
		"unit_price": product.UnitPrice.StringFixed(2),
		"discount":   product.Discount.String(),
	})
	return product, nil
}

// UpdatePrice changes the unit price of one SKU.
func (s *Service) UpdatePrice(ctx context.Context, sku SKU, price decimal.Decimal) (Product, error) {
	price = RoundMoney(price)
	if err := ValidatePrice(price); err != nil {
		return Product{}, err
	}
	return s.mutate(ctx, sku, "catalog:price", func(p *Product) {
		p.UnitPrice = price
	})
}

// UpdateDiscount changes the discount percentage of one SKU.
func (s *Service) UpdateDiscount(ctx context.Context, sku SKU, discount decimal.Decimal) (Product, error) {
	discount = RoundMoney(discount)
	if err := ValidateDiscount(discount); err != nil {
		return Product{}, err
	}
	return s.mutate(ctx, sku, "catalog:discount", func(p *Product) {
		p.Discount = discount
	})
}

func (s *Service) mutate(ctx context.Context, sku SKU, action string, apply func(*Product)) (Product, error) {
	sku = sku.Normalize()
	var updated Product
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		p, err := tx.GetProductForUpdate(ctx, sku)
		if err != nil {
			return err
		}
		apply(&p)
		if err := tx.UpdateProduct(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	s.afterMutation(ctx, action, sku.String(), map[string]any{
		"unit_price": updated.UnitPrice.StringFixed(2),
		"discount":   updated.Discount.String(),
	})
	return updated, nil
}

// UpdateDescription rewrites the description of every SKU of a product family.
func (s *Service) UpdateDescription(ctx context.Context, productID, description string) error {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ErrInvalidSKU
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		n, err := tx.UpdateFamilyDescription(ctx, productID, strings.TrimSpace(description))
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrProductNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.afterMutation(ctx, "catalog:description", productID, nil)
	return nil
}

// Exists reports whether the SKU is in the catalog.
func (s *Service) Exists(ctx context.Context, sku SKU) (bool, error) {
	_, err := s.repo.LookupProduct(ctx, sku.Normalize())
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Get loads one SKU.
func (s *Service) Get(ctx context.Context, sku SKU) (Product, error) {
	return s.repo.LookupProduct(ctx, sku.Normalize())
}

// ListAll returns every product, served from cache when available.
func (s *Service) ListAll(ctx context.Context) ([]Product, error) {
	if s.cache == nil {
		return s.repo.ListProducts(ctx)
	}
	key, err := s.cache.BuildKey(ctx, "products")
	if err != nil {
		return s.repo.ListProducts(ctx)
	}
	var products []Product
	err = s.cache.FetchJSON(ctx, key, &products, func(ctx context.Context) (any, error) {
		return s.repo.ListProducts(ctx)
	})
	if err != nil {
		return s.repo.ListProducts(ctx)
	}
	return products, nil
}

// FindIDsByName returns the product ids whose name matches exactly.
func (s *Service) FindIDsByName(ctx context.Context, name string) ([]string, error) {
	return s.repo.FindProductIDsByName(ctx, strings.TrimSpace(name))
}

func (s *Service) afterMutation(ctx context.Context, action, entityID string, meta map[string]any) {
	if s.cache != nil {
		_ = s.cache.Bump(ctx)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			Action:   action,
			Entity:   "product",
			EntityID: entityID,
			Meta:     meta,
		})
	}
}
