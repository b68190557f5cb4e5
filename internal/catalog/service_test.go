package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/cache"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
	"github.com/laxmi-pos/laxmi-pos/internal/store/memory"
)

var kurtaRed = catalog.SKU{ProductID: "KUR-001", Size: "M", Color: "Red"}

func newCatalog(t *testing.T, cfg catalog.ServiceConfig) (*catalog.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	return catalog.NewService(store.Catalog(), store.Audit(), cfg), store
}

func admitInput(sku catalog.SKU, name, price string) catalog.AdmitInput {
	return catalog.AdmitInput{SKU: sku, Name: name, UnitPrice: decimal.RequireFromString(price)}
}

func TestAdmitCreatesZeroStockRecord(t *testing.T) {
	ctx := context.Background()
	svc, store := newCatalog(t, catalog.ServiceConfig{})

	p, err := svc.Admit(ctx, admitInput(kurtaRed, "Cotton Kurti", "1200"))
	require.NoError(t, err)
	require.Equal(t, catalog.UnitTypePieces, p.UnitType)
	require.True(t, p.Discount.IsZero())

	rec, err := store.Inventory().LookupRecord(ctx, kurtaRed)
	require.NoError(t, err)
	require.Zero(t, rec.Stored)
	require.Zero(t, rec.Displayed)
	require.Equal(t, catalog.DefaultThreshold, rec.Threshold)

	exists, err := svc.Exists(ctx, kurtaRed)
	require.NoError(t, err)
	require.True(t, exists)
	require.Len(t, store.Audit().Entries(), 1)
}

func TestAdmitRejectsDuplicateSKU(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(t, catalog.ServiceConfig{})
	_, err := svc.Admit(ctx, admitInput(kurtaRed, "Cotton Kurti", "1200"))
	require.NoError(t, err)

	_, err = svc.Admit(ctx, admitInput(kurtaRed, "Another Kurti", "900"))
	require.ErrorIs(t, err, catalog.ErrDuplicateSKU)
	require.ErrorIs(t, err, shared.ErrConflict)

	other := kurtaRed
	other.Color = "Blue"
	_, err = svc.Admit(ctx, admitInput(other, "Cotton Kurti", "1200"))
	require.NoError(t, err)
}

func TestAdmitKeepsConfiguredZeroThreshold(t *testing.T) {
	ctx := context.Background()
	zero := int64(0)
	svc, store := newCatalog(t, catalog.ServiceConfig{DefaultThreshold: &zero})

	_, err := svc.Admit(ctx, admitInput(kurtaRed, "Cotton Kurti", "1200"))
	require.NoError(t, err)

	rec, err := store.Inventory().LookupRecord(ctx, kurtaRed)
	require.NoError(t, err)
	require.Zero(t, rec.Threshold)
}

func TestAdmitChecksDuplicateBeforePrice(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(t, catalog.ServiceConfig{})
	_, err := svc.Admit(ctx, admitInput(kurtaRed, "Cotton Kurti", "1200"))
	require.NoError(t, err)

	_, err = svc.Admit(ctx, admitInput(kurtaRed, "Cotton Kurti", "0"))
	require.ErrorIs(t, err, catalog.ErrDuplicateSKU)
}

func TestPricesAndDiscountsRoundBeforeValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(t, catalog.ServiceConfig{})

	_, err := svc.Admit(ctx, admitInput(kurtaRed, "Cotton Kurti", "0.004"))
	require.ErrorIs(t, err, catalog.ErrInvalidPrice)
	exists, err := svc.Exists(ctx, kurtaRed)
	require.NoError(t, err)
	require.False(t, exists)

	in := admitInput(kurtaRed, "Cotton Kurti", "0.005")
	in.Discount = decimal.RequireFromString("12.345")
	p, err := svc.Admit(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "0.01", p.UnitPrice.String())
	require.Equal(t, "12.35", p.Discount.String())

	_, err = svc.UpdatePrice(ctx, kurtaRed, decimal.RequireFromString("0.0049"))
	require.ErrorIs(t, err, catalog.ErrInvalidPrice)

	p, err = svc.UpdateDiscount(ctx, kurtaRed, decimal.RequireFromString("7.125"))
	require.NoError(t, err)
	require.Equal(t, "7.13", p.Discount.String())

	stored, err := svc.Get(ctx, kurtaRed)
	require.NoError(t, err)
	require.Equal(t, "0.01", stored.UnitPrice.String())
	require.Equal(t, "7.13", stored.Discount.String())
}

func TestAdmitValidatesInput(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(t, catalog.ServiceConfig{})

	_, err := svc.Admit(ctx, admitInput(kurtaRed, "Kurti", "0"))
	require.ErrorIs(t, err, catalog.ErrInvalidPrice)

	in := admitInput(kurtaRed, "Kurti", "10")
	in.Discount = decimal.NewFromInt(-1)
	_, err = svc.Admit(ctx, in)
	require.ErrorIs(t, err, catalog.ErrInvalidDiscount)

	_, err = svc.Admit(ctx, admitInput(catalog.SKU{ProductID: "KUR-001"}, "Kurti", "10"))
	require.ErrorIs(t, err, catalog.ErrInvalidSKU)

	_, err = svc.Admit(ctx, admitInput(kurtaRed, "  ", "10"))
	require.ErrorIs(t, err, catalog.ErrInvalidName)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestAdmitHonoursNamePolicy(t *testing.T) {
	ctx := context.Background()
	threshold := int64(2)
	svc, _ := newCatalog(t, catalog.ServiceConfig{Policy: catalog.KeywordPolicy(catalog.ApparelKeywords...), DefaultThreshold: &threshold})

	_, err := svc.Admit(ctx, admitInput(catalog.SKU{ProductID: "BAT-01", Size: "L", Color: "Black"}, "Cricket Bat", "50"))
	require.ErrorIs(t, err, catalog.ErrCategoryNotAllowed)

	_, err = svc.Admit(ctx, admitInput(kurtaRed, "Printed KURTI", "50"))
	require.NoError(t, err)
}

func TestUpdatesRequireExistingSKU(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(t, catalog.ServiceConfig{})

	_, err := svc.UpdatePrice(ctx, kurtaRed, decimal.NewFromInt(10))
	require.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = svc.UpdateDiscount(ctx, kurtaRed, decimal.NewFromInt(10))
	require.ErrorIs(t, err, catalog.ErrNotFound)
	require.ErrorIs(t, svc.UpdateDescription(ctx, "KUR-001", "soft"), catalog.ErrProductNotFound)

	_, err = svc.Admit(ctx, admitInput(kurtaRed, "Kurti", "100"))
	require.NoError(t, err)

	p, err := svc.UpdatePrice(ctx, kurtaRed, decimal.RequireFromString("149.999"))
	require.NoError(t, err)
	require.Equal(t, "150.00", p.UnitPrice.StringFixed(2))

	_, err = svc.UpdatePrice(ctx, kurtaRed, decimal.Zero)
	require.ErrorIs(t, err, catalog.ErrInvalidPrice)
	_, err = svc.UpdateDiscount(ctx, kurtaRed, decimal.NewFromInt(101))
	require.ErrorIs(t, err, catalog.ErrInvalidDiscount)

	p, err = svc.UpdateDiscount(ctx, kurtaRed, decimal.NewFromInt(15))
	require.NoError(t, err)
	require.True(t, p.Discount.Equal(decimal.NewFromInt(15)))
}

func TestUpdateDescriptionAppliesToFamily(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(t, catalog.ServiceConfig{})
	blue := kurtaRed
	blue.Color = "Blue"
	for _, sku := range []catalog.SKU{kurtaRed, blue} {
		_, err := svc.Admit(ctx, admitInput(sku, "Kurti", "100"))
		require.NoError(t, err)
	}

	require.NoError(t, svc.UpdateDescription(ctx, "KUR-001", "hand block print"))
	for _, sku := range []catalog.SKU{kurtaRed, blue} {
		p, err := svc.Get(ctx, sku)
		require.NoError(t, err)
		require.Equal(t, "hand block print", p.Description)
	}
}

func TestFindIDsByName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newCatalog(t, catalog.ServiceConfig{})
	_, err := svc.Admit(ctx, admitInput(kurtaRed, "Kurti", "100"))
	require.NoError(t, err)
	_, err = svc.Admit(ctx, admitInput(catalog.SKU{ProductID: "KUR-002", Size: "S", Color: "Red"}, "Kurti", "90"))
	require.NoError(t, err)
	_, err = svc.Admit(ctx, admitInput(catalog.SKU{ProductID: "SAR-001", Size: "F", Color: "Green"}, "Saree", "900"))
	require.NoError(t, err)

	ids, err := svc.FindIDsByName(ctx, "Kurti")
	require.NoError(t, err)
	require.Equal(t, []string{"KUR-001", "KUR-002"}, ids)
}

func TestListAllCacheInvalidatedByMutation(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	listing := cache.NewVersioned(client, "catalog", time.Minute)
	svc, _ := newCatalog(t, catalog.ServiceConfig{Cache: listing})

	products, err := svc.ListAll(ctx)
	require.NoError(t, err)
	require.Empty(t, products)

	_, err = svc.Admit(ctx, admitInput(kurtaRed, "Kurti", "100"))
	require.NoError(t, err)

	products, err = svc.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, "100.00", products[0].UnitPrice.StringFixed(2))
}
