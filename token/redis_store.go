package token

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPrefix = "lms:tokens:"
	fieldAccessToken   = "accessToken"
	fieldRefreshToken  = "refreshToken"
)

var _ Keyed = (*RedisStore)(nil)

// RedisStore keeps each browser's pair in a hash so tokens survive portal restarts.
// A ttl of zero keeps pairs until they are cleared.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed token store.
func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) For(key string) Store {
	return &redisEntry{store: s, key: s.prefix + key}
}

type redisEntry struct {
	store *RedisStore
	key   string
}

func (e *redisEntry) Save(ctx context.Context, pair Pair) error {
	if pair.Empty() {
		return e.Clear(ctx)
	}
	_, err := e.store.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, e.key)
		p.HSet(ctx, e.key, fieldAccessToken, pair.AccessToken, fieldRefreshToken, pair.RefreshToken)
		if e.store.ttl > 0 {
			p.Expire(ctx, e.key, e.store.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("[RedisStore Save] failed to store tokens: %w", err)
	}
	return nil
}

func (e *redisEntry) Read(ctx context.Context) (Pair, bool, error) {
	values, err := e.store.client.HMGet(ctx, e.key, fieldAccessToken, fieldRefreshToken).Result()
	if err != nil {
		return Pair{}, false, fmt.Errorf("[RedisStore Read] failed to read tokens: %w", err)
	}
	pair := Pair{
		AccessToken:  stringValue(values, 0),
		RefreshToken: stringValue(values, 1),
	}
	return pair, !pair.Empty(), nil
}

func (e *redisEntry) SetAccessToken(ctx context.Context, accessToken string) error {
	_, err := e.store.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, e.key, fieldAccessToken, accessToken)
		if e.store.ttl > 0 {
			p.Expire(ctx, e.key, e.store.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("[RedisStore SetAccessToken] failed to store access token: %w", err)
	}
	return nil
}

func (e *redisEntry) Clear(ctx context.Context) error {
	if err := e.store.client.Del(ctx, e.key).Err(); err != nil {
		return fmt.Errorf("[RedisStore Clear] failed to delete tokens: %w", err)
	}
	return nil
}

func stringValue(values []interface{}, i int) string {
	if i >= len(values) || values[i] == nil {
		return ""
	}
	s, _ := values[i].(string)
	return s
}
