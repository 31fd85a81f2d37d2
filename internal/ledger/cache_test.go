package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesOnce(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return SaldoResult{Saldo: 10}, nil
	}

	key, err := cache.BuildKey(ctx, keySaldo(1))
	require.NoError(t, err)

	var first, second SaldoResult
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))

	assert.Equal(t, 1, calls, "second read must hit the cache")
	assert.Equal(t, first, second)
}

func TestCacheBumpInvalidates(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, keySaldo(1))
	require.NoError(t, err)

	require.NoError(t, cache.Bump(ctx))

	after, err := cache.BuildKey(ctx, keySaldo(1))
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "bump must change the composed key")
}

func TestNilCacheDegradesToLoader(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, keySaldo(1))
	require.NoError(t, err)

	calls := 0
	var result SaldoResult
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return SaldoResult{Saldo: 5}, nil
	}
	require.NoError(t, cache.FetchJSON(ctx, key, &result, loader))
	require.NoError(t, cache.FetchJSON(ctx, key, &result, loader))

	assert.Equal(t, 2, calls)
	assert.Equal(t, 5.0, result.Saldo)
	assert.NoError(t, cache.Bump(ctx))
}

func TestKeyScopesUserAndWindow(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, keyChart(1, nil, nil), keyChart(2, nil, nil))
	assert.NotEqual(t, keyChart(1, &from, nil), keyChart(1, nil, nil))
	assert.NotEqual(t, keyMonthly(1, nil, nil), keyChart(1, nil, nil))
}
