package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Versioned {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewVersioned(client, "test", time.Minute)
}

func TestFetchJSONCachesUntilBump(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return map[string]int{"calls": calls}, nil
	}

	key, err := c.BuildKey(ctx, "summary")
	require.NoError(t, err)
	var out map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 1, out["calls"])
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.Equal(t, 1, calls)

	require.NoError(t, c.Bump(ctx))
	key2, err := c.BuildKey(ctx, "summary")
	require.NoError(t, err)
	require.NotEqual(t, key, key2)
	require.NoError(t, c.FetchJSON(ctx, key2, &out, loader))
	require.Equal(t, 2, out["calls"])
}

func TestNilClientFallsThroughToLoader(t *testing.T) {
	c := NewVersioned(nil, "test", time.Minute)
	ctx := context.Background()
	key, err := c.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	require.Equal(t, "test:a:b", key)

	var out []string
	require.NoError(t, c.FetchJSON(ctx, key, &out, func(context.Context) (any, error) {
		return []string{"x"}, nil
	}))
	require.Equal(t, []string{"x"}, out)
	require.NoError(t, c.Bump(ctx))
}

func TestNewFailsWhenRedisIsDown(t *testing.T) {
	_, err := New(context.Background(), "127.0.0.1:1")
	require.ErrorContains(t, err, "platform/cache: ping 127.0.0.1:1")
}
