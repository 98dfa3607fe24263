package tokens

import (
	"context"
	"errors"
	"time"

	"food-ordering-api/store"

	"github.com/redis/go-redis/v9"
)

// RedisRevocations keeps revoked ids as keys that expire with the token.
type RedisRevocations struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client, prefix: "revoked:", now: time.Now}
}

func (r *RedisRevocations) key(jti string) string {
	return r.prefix + jti
}

func (r *RedisRevocations) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := until.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.key(jti), 1, ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.client.Get(ctx, r.key(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SQLRevocations stores revoked ids in the revoked_tokens table.
type SQLRevocations struct {
	store *store.Store
	now   func() time.Time
}

func NewSQLRevocations(s *store.Store) *SQLRevocations {
	return &SQLRevocations{store: s, now: time.Now}
}

func (r *SQLRevocations) Revoke(ctx context.Context, jti string, until time.Time) error {
	if err := r.store.RevokeToken(ctx, jti, until); err != nil {
		return err
	}
	_, err := r.store.PurgeRevokedTokens(ctx, r.now())
	return err
}

func (r *SQLRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.store.TokenRevoked(ctx, jti, r.now())
}
