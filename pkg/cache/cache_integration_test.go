//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/ghuser/brigade/pkg/config"
)

func startRedis(t *testing.T) *RedisClient {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcredis.Run(ctx, "redis:7-alpine")
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	url, err := ctr.ConnectionString(ctx)
	require.NoError(t, err)

	rc, err := NewRedisClient(ctx, &config.Config{RedisURL: url, RedisPoolSize: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestStockCache_Redis(t *testing.T) {
	rc := startRedis(t)
	ctx := context.Background()
	require.NoError(t, rc.Ping(ctx))

	c := NewStockCache(rc, time.Minute)
	const id = int64(42)

	_, err := c.Get(ctx, id)
	require.True(t, errors.Is(err, redis.Nil), "expected redis.Nil on miss, got %v", err)

	minStock := 2
	in := &CachedStock{ItemID: id, Code: "ERA-HELMET-01", Quantity: 4, MinStock: &minStock, IsPPE: true, CreatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, c.Set(ctx, in))

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 4, got.Quantity)
	require.Equal(t, &minStock, got.MinStock)
	require.True(t, got.CreatedAt.Equal(in.CreatedAt))

	ttl, err := rc.Client().TTL(ctx, c.key(id)).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))
	require.LessOrEqual(t, ttl, time.Minute)

	// A refresh must replace optional fields, not merge them.
	require.NoError(t, c.Set(ctx, &CachedStock{ItemID: id, Code: "ERA-HELMET-01", Quantity: 3, CreatedAt: in.CreatedAt}))
	got, err = c.Get(ctx, id)
	require.NoError(t, err)
	require.Nil(t, got.MinStock)

	require.NoError(t, c.Delete(ctx, id))
	_, err = c.Get(ctx, id)
	require.True(t, errors.Is(err, redis.Nil))
}

func TestStockCache_GenerationGuard(t *testing.T) {
	rc := startRedis(t)
	ctx := context.Background()
	c := NewStockCache(rc, time.Minute)
	const id = int64(7)

	gen, err := c.Generation(ctx, id)
	require.NoError(t, err)
	require.Zero(t, gen)

	// A snapshot read before a commit must not land after it.
	require.NoError(t, c.Invalidate(ctx, id))
	stored, err := c.SetIfGeneration(ctx, &CachedStock{ItemID: id, Quantity: 5}, gen)
	require.NoError(t, err)
	require.False(t, stored)
	_, err = c.Get(ctx, id)
	require.True(t, errors.Is(err, redis.Nil))

	gen, err = c.Generation(ctx, id)
	require.NoError(t, err)
	require.Equal(t, int64(1), gen)
	stored, err = c.SetIfGeneration(ctx, &CachedStock{ItemID: id, Quantity: 2}, gen)
	require.NoError(t, err)
	require.True(t, stored)

	got, err := c.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 2, got.Quantity)

	require.NoError(t, c.Invalidate(ctx, id))
	_, err = c.Get(ctx, id)
	require.True(t, errors.Is(err, redis.Nil))
}
