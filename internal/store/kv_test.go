package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedisKV(client)
}

func TestRedisKV_GetSet(t *testing.T) {
	_, kv := setupTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "kits:resolve:loot:srv-1", `{"version":3}`, 30*time.Second))

	val, err := kv.Get(ctx, "kits:resolve:loot:srv-1")
	require.NoError(t, err)
	assert.Equal(t, `{"version":3}`, val)
}

func TestRedisKV_GetMiss(t *testing.T) {
	_, kv := setupTestKV(t)

	_, err := kv.Get(context.Background(), "kits:resolve:loot:absent")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_SetTTL(t *testing.T) {
	mr, kv := setupTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", "v", 30*time.Second))

	mr.FastForward(31 * time.Second)

	_, err := kv.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_ScanAndDel(t *testing.T) {
	_, kv := setupTestKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "kits:resolve:loot:a", "1", 0))
	require.NoError(t, kv.Set(ctx, "kits:resolve:loot:b", "2", 0))
	require.NoError(t, kv.Set(ctx, "kits:resolve:shop:a", "3", 0))

	keys, err := kv.ScanKeys(ctx, "kits:resolve:loot:*")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	require.NoError(t, kv.Del(ctx, keys...))

	_, err = kv.Get(ctx, "kits:resolve:loot:a")
	assert.ErrorIs(t, err, ErrMiss)

	// 其它域的 key 不受影响
	val, err := kv.Get(ctx, "kits:resolve:shop:a")
	require.NoError(t, err)
	assert.Equal(t, "3", val)
}

func TestRedisKV_DelEmpty(t *testing.T) {
	_, kv := setupTestKV(t)
	assert.NoError(t, kv.Del(context.Background()))
}
