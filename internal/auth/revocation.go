package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore records revoked token ids.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type redisRevocationStore struct {
	rdb *redis.Client
}

// NewRedisRevocationStore returns a Redis-backed store, or nil when rdb is nil.
func NewRedisRevocationStore(rdb *redis.Client) RevocationStore {
	if rdb == nil {
		return nil
	}
	return &redisRevocationStore{rdb: rdb}
}

func revocationKey(tokenID string) string {
	return "blacklist:" + tokenID
}

func (s *redisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return s.rdb.Set(ctx, revocationKey(tokenID), "1", ttl).Err()
}

func (s *redisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revocationKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
