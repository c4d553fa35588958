package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errx "github.com/triptrop/client/internal/core/error"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Set(ctx, "jwt-1", 0))
	tok, _ = s.Token(ctx)
	assert.Equal(t, "jwt-1", tok)

	require.NoError(t, s.Set(ctx, "jwt-2", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)
	tok, _ = s.Token(ctx)
	assert.Empty(t, tok, "expired credentials are forgotten")

	require.NoError(t, s.Set(ctx, "jwt-3", 0))
	require.NoError(t, s.Clear(ctx))
	tok, _ = s.Token(ctx)
	assert.Empty(t, tok)
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, "alice"), mr
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	s, mr := newRedisStore(t)

	tok, err := s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Set(ctx, "jwt-1", time.Minute))
	raw, err := mr.Get("credential:alice:access_token")
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", raw)
	assert.Equal(t, time.Minute, mr.TTL("credential:alice:access_token"))

	tok, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", tok)

	mr.FastForward(2 * time.Minute)
	tok, err = s.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)

	require.NoError(t, s.Set(ctx, "jwt-2", 0))
	require.NoError(t, s.Clear(ctx))
	assert.False(t, mr.Exists("credential:alice:access_token"))
}

func TestRedisStoreFailureIsClassified(t *testing.T) {
	s, mr := newRedisStore(t)
	mr.Close()

	_, err := s.Token(context.Background())
	assert.True(t, errx.IsKind(err, errx.KindServer))
}
