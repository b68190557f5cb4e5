package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/laxmi-pos/laxmi-pos/internal/app"
	"github.com/laxmi-pos/laxmi-pos/internal/store/memory"
)

func TestSeedIsRepeatable(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	cfg, err := app.LoadConfig()
	require.NoError(t, err)
	svc := app.NewServices(cfg, app.MemoryBackend(memory.New()), app.Caches{})
	ctx := context.Background()

	out := new(bytes.Buffer)
	require.NoError(t, seed(ctx, svc, out))
	require.Contains(t, out.String(), "invoice INV-0000000000 total 15142.00 discount 200.00")

	kurti, err := svc.Inventory.GetDisplayed(ctx, sampleProducts[0].sku)
	require.NoError(t, err)
	require.EqualValues(t, 19, kurti.Value)
	stored, err := svc.Inventory.GetStored(ctx, sampleProducts[0].sku)
	require.NoError(t, err)
	require.EqualValues(t, 50, stored.Value)

	out.Reset()
	require.NoError(t, seed(ctx, svc, out))
	require.Contains(t, out.String(), "skipping demo sale")

	statuses, err := svc.Tokens.ListAllStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, seedTokens)
	for _, tok := range statuses {
		require.True(t, tok.Free(), tok.ID)
	}

	all, err := svc.Orders.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
