package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionRepository tracks logged-out tokens until they would have expired anyway.
type SessionRepository interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// LockRepository hands out short-lived exclusive locks keyed by name.
type LockRepository interface {
	// Acquire returns a release token and true when the lock was taken.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	// Release drops the lock only if token still owns it.
	Release(ctx context.Context, key, token string) error
}

type redisSessionRepository struct {
	rdb *redis.Client
}

func NewRedisSessionRepository(rdb *redis.Client) SessionRepository {
	return &redisSessionRepository{rdb: rdb}
}

func revokedSessionKey(tokenID string) string {
	return "revoked_session:" + tokenID
}

func (r *redisSessionRepository) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired, nothing to remember
	}
	if err := r.rdb.Set(ctx, revokedSessionKey(tokenID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("redisSessionRepository.Revoke: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedSessionKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("redisSessionRepository.IsRevoked: %w", err)
	}
	return n > 0, nil
}

type redisLockRepository struct {
	rdb *redis.Client
}

func NewRedisLockRepository(rdb *redis.Client) LockRepository {
	return &redisLockRepository{rdb: rdb}
}

// Compare-and-delete so an expired lock re-taken by someone else is left alone.
var releaseLockScript = redis.NewScript(`
    if redis.call("get", KEYS[1]) == ARGV[1] then
        return redis.call("del", KEYS[1])
    else
        return 0
    end
`)

func (r *redisLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("redisLockRepository.Acquire: %w", err)
	}
	return token, ok, nil
}

func (r *redisLockRepository) Release(ctx context.Context, key, token string) error {
	err := releaseLockScript.Run(ctx, r.rdb, []string{key}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redisLockRepository.Release: %w", err)
	}
	return nil
}
