// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	ok, err := m.Acquire(ctx, "paper:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = m.Acquire(ctx, "paper:1", time.Minute)
	assert.False(t, ok, "second acquire is refused")

	ok, _ = m.Acquire(ctx, "paper:2", time.Minute)
	assert.True(t, ok, "other names are independent")

	require.NoError(t, m.Release(ctx, "paper:1"))
	ok, _ = m.Acquire(ctx, "paper:1", time.Minute)
	assert.True(t, ok)

	assert.NoError(t, m.Release(ctx, "never-held"))
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.clock = func() time.Time { return now }

	ok, _ := m.Acquire(ctx, "a", time.Minute)
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = m.Acquire(ctx, "a", time.Minute)
	assert.True(t, ok, "expired lock is reclaimed")

	ok, _ = m.Acquire(ctx, "forever", 0)
	require.True(t, ok)
	now = now.Add(24 * time.Hour)
	ok, _ = m.Acquire(ctx, "forever", 0)
	assert.False(t, ok)
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedis_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	a := NewRedis(client)
	b := NewRedis(client)

	ok, err := a.Acquire(ctx, "paper:1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists(keyPrefix+"paper:1"))

	ok, err = b.Acquire(ctx, "paper:1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Release(ctx, "paper:1"))
	assert.True(t, mr.Exists(keyPrefix+"paper:1"), "non-owner release leaves the lock")

	require.NoError(t, a.Release(ctx, "paper:1"))
	assert.False(t, mr.Exists(keyPrefix+"paper:1"))

	ok, _ = b.Acquire(ctx, "paper:1", time.Minute)
	assert.True(t, ok)
}

func TestRedis_TTL(t *testing.T) {
	ctx := context.Background()
	mr, client := setupRedis(t)
	l := NewRedis(client)

	ok, err := l.Acquire(ctx, "x", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)
	ok, err = NewRedis(client).Acquire(ctx, "x", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedis_Ping(t *testing.T) {
	_, client := setupRedis(t)
	assert.NoError(t, NewRedis(client).Ping(context.Background()))
}

func TestRedis_ConnectionError(t *testing.T) {
	mr, client := setupRedis(t)
	mr.Close()

	_, err := NewRedis(client).Acquire(context.Background(), "x", time.Second)
	assert.Error(t, err)
}
