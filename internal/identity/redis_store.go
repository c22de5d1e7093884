package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps identity data in redis with no expiry.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
	}
}

func sessionKey(sessionID string) string { return fmt.Sprintf("identity:session:%s", sessionID) }
func emailKey(sessionID string) string   { return fmt.Sprintf("identity:email:%s", sessionID) }

func (s *RedisStore) SaveSession(ctx context.Context, sessionID string) error {
	return s.rdb.Set(ctx, sessionKey(sessionID), "1", 0).Err()
}

func (s *RedisStore) SessionExists(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) SaveEmail(ctx context.Context, sessionID, email string) error {
	return s.rdb.Set(ctx, emailKey(sessionID), email, 0).Err()
}

func (s *RedisStore) LoadEmail(ctx context.Context, sessionID string) (string, error) {
	v, err := s.rdb.Get(ctx, emailKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return v, nil
}

func (s *RedisStore) DeleteEmail(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, emailKey(sessionID)).Err()
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
