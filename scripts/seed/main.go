package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/laxmi-pos/laxmi-pos/internal/app"
	"github.com/laxmi-pos/laxmi-pos/internal/catalog"
	"github.com/laxmi-pos/laxmi-pos/internal/invoices"
	"github.com/laxmi-pos/laxmi-pos/internal/orders"
	"github.com/laxmi-pos/laxmi-pos/internal/platform/db"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
	"github.com/laxmi-pos/laxmi-pos/internal/store/memory"
)

// seedTokens is the size of the demo token pool, TOK-00..TOK-19.
const seedTokens = 20

type sampleProduct struct {
	sku         catalog.SKU
	name        string
	description string
	price       int64
	stored      int64
	displayed   int64
	threshold   int64
}

var sampleProducts = []sampleProduct{
	{catalog.SKU{ProductID: "KUR-001", Size: "S", Color: "Red"}, "Women's Designer Kurti", "Cotton blend with embroidery", 1800, 50, 20, 10},
	{catalog.SKU{ProductID: "KUR-002", Size: "M", Color: "Red"}, "Women's Designer Kurti", "Cotton blend with embroidery", 1800, 40, 15, 10},
	{catalog.SKU{ProductID: "SAR-003", Size: "L", Color: "Golden"}, "Silk Saree", "Pure Banarasi silk saree with golden border", 5200, 30, 10, 5},
	{catalog.SKU{ProductID: "TOP-004", Size: "M", Color: "Blue"}, "Ladies Formal Top", "Office wear formal top", 1450, 60, 25, 10},
	{catalog.SKU{ProductID: "SKT-005", Size: "L", Color: "Pink"}, "Long Skirt", "Printed chiffon long skirt", 1650, 40, 20, 5},
	{catalog.SKU{ProductID: "DRS-006", Size: "S", Color: "Black"}, "Party Dress", "Elegant evening gown", 3500, 20, 10, 5},
}

func main() {
	ctx := shared.ContextWithActor(context.Background(), "seed")
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var backend app.Backend
	if cfg.StoreDriver == app.DriverMemory {
		backend = app.MemoryBackend(memory.New())
	} else {
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pool.Close()
		backend = app.PostgresBackend(pool)
	}

	if err := seed(ctx, app.NewServices(cfg, backend, app.Caches{}), os.Stdout); err != nil {
		log.Fatalf("seed: %v", err)
	}
	fmt.Println("✓ Seed complete at", time.Now().Format(time.RFC3339))
}

func seed(ctx context.Context, svc *app.Services, out io.Writer) error {
	fmt.Fprintln(out, "→ Seeding catalog...")
	fresh, err := seedCatalog(ctx, svc)
	if err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	fmt.Fprintln(out, "→ Seeding inventory...")
	if err := seedInventory(ctx, svc, fresh); err != nil {
		return fmt.Errorf("inventory: %w", err)
	}

	fmt.Fprintln(out, "→ Seeding tokens...")
	if err := seedTokenPool(ctx, svc); err != nil {
		return fmt.Errorf("tokens: %w", err)
	}

	if len(fresh) == 0 {
		fmt.Fprintln(out, "→ Catalog already present, skipping demo sale")
		return nil
	}
	fmt.Fprintln(out, "→ Running demo sale...")
	inv, err := demoSale(ctx, svc)
	if err != nil {
		return fmt.Errorf("demo sale: %w", err)
	}
	fmt.Fprintf(out, "  invoice %s total %s discount %s\n", inv.ID, inv.Total.StringFixed(2), inv.DiscountGiven.StringFixed(2))
	return nil
}

// seedCatalog admits the sample products and returns the ones that were new.
func seedCatalog(ctx context.Context, svc *app.Services) ([]sampleProduct, error) {
	var fresh []sampleProduct
	for _, p := range sampleProducts {
		_, err := svc.Catalog.Admit(ctx, catalog.AdmitInput{
			SKU:         p.sku,
			Name:        p.name,
			Description: p.description,
			UnitPrice:   decimal.NewFromInt(p.price),
		})
		switch {
		case errors.Is(err, catalog.ErrDuplicateSKU):
			continue
		case err != nil:
			return nil, fmt.Errorf("admit %s: %w", p.sku, err)
		}
		fresh = append(fresh, p)
	}
	return fresh, nil
}

// seedInventory books stock through a received supplier order so the transaction log stays complete.
func seedInventory(ctx context.Context, svc *app.Services, products []sampleProduct) error {
	if len(products) == 0 {
		return nil
	}
	lines := make([]orders.LineInput, 0, len(products))
	for _, p := range products {
		lines = append(lines, orders.LineInput{SKU: p.sku, Quantity: p.stored + p.displayed})
	}
	order, err := svc.Orders.Place(ctx, lines)
	if err != nil {
		return err
	}
	if err := svc.Orders.Receive(ctx, order.ID); err != nil {
		return err
	}
	for _, p := range products {
		if _, err := svc.Counter.MoveStoredToDisplayed(ctx, p.sku, p.displayed); err != nil {
			return fmt.Errorf("restock %s: %w", p.sku, err)
		}
		if _, err := svc.Inventory.UpdateThreshold(ctx, p.sku, p.threshold); err != nil {
			return fmt.Errorf("threshold %s: %w", p.sku, err)
		}
	}
	return nil
}

func seedTokenPool(ctx context.Context, svc *app.Services) error {
	existing, err := svc.Tokens.ListAllStatuses(ctx)
	if err != nil {
		return err
	}
	for n := len(existing); n < seedTokens; n++ {
		if _, err := svc.Tokens.AllocateTokenID(ctx); err != nil {
			return err
		}
	}
	return nil
}

// demoSale bills two shoppers on one invoice, then supplier-orders more sarees and dresses.
func demoSale(ctx context.Context, svc *app.Services) (invoices.Invoice, error) {
	first, err := svc.Tokens.Claim(ctx)
	if err != nil {
		return invoices.Invoice{}, err
	}
	second, err := svc.Tokens.Claim(ctx)
	if err != nil {
		return invoices.Invoice{}, err
	}
	picks := []struct {
		token string
		p     sampleProduct
		qty   int64
	}{
		{first.ID, sampleProducts[0], 1},
		{first.ID, sampleProducts[3], 2},
		{second.ID, sampleProducts[2], 1},
		{second.ID, sampleProducts[5], 1},
	}
	for _, pick := range picks {
		if _, err := svc.Counter.MoveDisplayedToToken(ctx, pick.token, pick.p.sku, pick.qty); err != nil {
			return invoices.Invoice{}, fmt.Errorf("sell %s: %w", pick.p.sku, err)
		}
	}

	if _, err := svc.Orders.Place(ctx, []orders.LineInput{
		{SKU: sampleProducts[2].sku, Quantity: 40},
		{SKU: sampleProducts[5].sku, Quantity: 30},
	}); err != nil {
		return invoices.Invoice{}, err
	}

	inv, err := svc.Invoices.Generate(ctx, invoices.GenerateInput{
		TokenIDs:    []string{first.ID, second.ID},
		PaymentMode: invoices.PaymentCash,
	})
	if err != nil {
		return invoices.Invoice{}, err
	}
	inv, err = svc.Invoices.AdjustDiscount(ctx, inv.ID, decimal.NewFromInt(200))
	if err != nil {
		return invoices.Invoice{}, err
	}
	for _, id := range []string{first.ID, second.ID} {
		if err := svc.Tokens.Release(ctx, id); err != nil {
			return invoices.Invoice{}, err
		}
	}
	return inv, nil
}
