package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Bind(ctx, "a", 42, time.Minute))

	id, ok, err := s.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok, err = s.Lookup(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(time.Minute)
	_, ok, err = s.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "binding should expire at its deadline")

	require.NoError(t, s.Bind(ctx, "b", 1, time.Minute))
	require.NoError(t, s.Revoke(ctx, "b"))
	require.NoError(t, s.Revoke(ctx, "b"))
	_, ok, _ = s.Lookup(ctx, "b")
	assert.False(t, ok)

	assert.NoError(t, s.Ping(ctx))
}

func TestRedisStore_CorruptBinding(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()

	s := NewRedisStore(rdb)
	require.NoError(t, mr.Set("session:x", "not-a-number"))

	_, ok, err := s.Lookup(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, s.Ping(context.Background()))
}

func TestNewStore(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	s, err := NewStore(rdb, false)
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)

	s, err = NewStore(nil, true)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	_, err = NewStore(nil, false)
	assert.Error(t, err)
}
