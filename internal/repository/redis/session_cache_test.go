package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dormdigest/internal/config"
)

func newTestCache(t *testing.T) (*SessionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return &SessionCache{Client: client, TTL: time.Minute}, mr
}

func TestSessionCachePutGetDelete(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 8, 19, 0, 0, 123, time.UTC)

	require.NoError(t, cache.Put(ctx, "tok", "a@mit.edu", created))
	assert.True(t, mr.Exists("session:token:tok"))

	got, err := cache.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "a@mit.edu", got.Email)
	assert.True(t, created.Equal(got.CreatedAt))

	require.NoError(t, cache.Delete(ctx, "tok"))
	_, err = cache.Get(ctx, "tok")
	assert.True(t, errors.Is(err, ErrSessionMiss))
}

func TestSessionCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "tok", "a@mit.edu", time.Now()))
	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(ctx, "tok")
	assert.True(t, errors.Is(err, ErrSessionMiss))
}

func TestSessionCacheIgnoresGarbage(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set("session:token:bad", "not-a-session"))

	_, err := cache.Get(context.Background(), "bad")
	assert.True(t, errors.Is(err, ErrSessionMiss))
}

func TestSessionCacheUnavailable(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "tok")
	assert.True(t, errors.Is(err, ErrRedisUnavailable))
}
