package security

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "rento/internal/domain/auth"
)

const revokedKeyPrefix = "rento:revoked:"

// RedisRevocationStore keeps revoked token ids until their natural expiry.
type RedisRevocationStore struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedisRevocationStore(rdb *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{rdb: rdb, now: time.Now}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ domainauth.RevocationStore = (*RedisRevocationStore)(nil)
