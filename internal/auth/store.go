package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	errx "github.com/triptrop/client/internal/core/error"
	logx "github.com/triptrop/client/pkg/logger"
)

// Store is the process-wide credential slot. It doubles as the transport's
// token source.
type Store interface {
	// Token returns the current bearer token, "" when none is held.
	Token(ctx context.Context) (string, error)
	// Set stores token; ttl <= 0 keeps it until cleared.
	Set(ctx context.Context, token string, ttl time.Duration) error
	// Clear evicts the token.
	Clear(ctx context.Context) error
}

const tokenKey = "access_token"

// MemoryStore keeps the token in process memory and forgets it on expiry.
type MemoryStore struct {
	c *cache.Cache
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: cache.New(cache.NoExpiration, time.Minute)}
}

// Token returns the stored token, "" when none or expired.
func (m *MemoryStore) Token(context.Context) (string, error) {
	v, ok := m.c.Get(tokenKey)
	if !ok {
		return "", nil
	}
	s, _ := v.(string)
	return s, nil
}

// Set stores token for ttl; ttl <= 0 keeps it until cleared.
func (m *MemoryStore) Set(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	m.c.Set(tokenKey, token, ttl)
	return nil
}

// Clear forgets the token.
func (m *MemoryStore) Clear(context.Context) error {
	m.c.Delete(tokenKey)
	return nil
}

// RedisStore keeps the token in Redis so several client processes of the
// same profile share one sign-in.
type RedisStore struct {
	rdb     redis.Cmdable
	profile string
}

// NewRedisStore returns a store keeping the token of profile in rdb.
func NewRedisStore(rdb redis.Cmdable, profile string) *RedisStore {
	return &RedisStore{rdb: rdb, profile: profile}
}

func (r *RedisStore) key() string {
	return fmt.Sprintf("credential:%s:%s", r.profile, tokenKey)
}

// Token returns the stored token, "" when the key is missing.
func (r *RedisStore) Token(ctx context.Context) (string, error) {
	s, err := r.rdb.Get(ctx, r.key()).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		logx.Error().Err(err).Str("key", r.key()).Msg("failed to read credential from redis")
		return "", errx.WrapRedis(err)
	}
	return s, nil
}

// Set writes token with ttl as the key expiry; ttl <= 0 means none.
func (r *RedisStore) Set(ctx context.Context, token string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := r.rdb.Set(ctx, r.key(), token, ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", r.key()).Msg("failed to store credential in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

// Clear deletes the key.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key()).Err(); err != nil {
		logx.Error().Err(err).Str("key", r.key()).Msg("failed to delete credential from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
