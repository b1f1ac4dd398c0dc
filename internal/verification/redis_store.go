package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func codeKey(subject string) string {
	return "verify:code:" + subject
}

// RedisStore keeps one key per subject with Redis-managed expiry.
// SET overwrites unconditionally, which is exactly the "new send
// invalidates the prior code" invariant.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Put(ctx context.Context, subject, code string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, codeKey(subject), code, ttl).Err(); err != nil {
		return fmt.Errorf("set verification code: %w", err)
	}
	return nil
}

func (s *RedisStore) Check(ctx context.Context, subject, code string) (Result, error) {
	stored, err := s.rdb.Get(ctx, codeKey(subject)).Result()
	if errors.Is(err, redis.Nil) {
		return ResultExpiredOrMissing, nil
	}
	if err != nil {
		return "", fmt.Errorf("get verification code: %w", err)
	}
	if stored != code {
		return ResultMismatch, nil
	}
	return ResultMatch, nil
}

var _ Store = (*RedisStore)(nil)
