// internal/pkg/token/redis_store.go
package token

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client  *redis.Client
	idleTTL time.Duration
}

// NewRedisStore returns a store whose entries expire after idleTTL without
// use. Save and every successful Read restart the window. A zero idleTTL
// keeps entries until they are cleared.
func NewRedisStore(client *redis.Client, idleTTL time.Duration) *RedisStore {
	return &RedisStore{client: client, idleTTL: idleTTL}
}

// Save writes both tokens in a single transaction.
func (s *RedisStore) Save(ctx context.Context, sid string, pair Pair) error {
	if sid == "" {
		return fmt.Errorf("save tokens: empty session id")
	}
	if !pair.Complete() {
		return ErrIncompletePair
	}

	key := s.key(sid)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, FieldAccess, pair.Access, FieldRefresh, pair.Refresh)
		if s.idleTTL > 0 {
			pipe.Expire(ctx, key, s.idleTTL)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store tokens in redis: %w", err)
	}
	return nil
}

// Read returns the stored pair and extends its idle window. A half-present
// pair is treated as absent and removed.
func (s *RedisStore) Read(ctx context.Context, sid string) (Pair, bool, error) {
	if sid == "" {
		return Pair{}, false, nil
	}

	key := s.key(sid)
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Pair{}, false, fmt.Errorf("failed to read tokens from redis: %w", err)
	}
	if len(fields) == 0 {
		return Pair{}, false, nil
	}

	pair := Pair{Access: fields[FieldAccess], Refresh: fields[FieldRefresh]}
	if !pair.Complete() {
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return Pair{}, false, fmt.Errorf("failed to drop incomplete token pair: %w", err)
		}
		return Pair{}, false, nil
	}
	if s.idleTTL > 0 {
		if err := s.client.Expire(ctx, key, s.idleTTL).Err(); err != nil {
			return Pair{}, false, fmt.Errorf("failed to extend token expiry: %w", err)
		}
	}
	return pair, true, nil
}

// Clear removes both tokens. Clearing an empty session is not an error.
func (s *RedisStore) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	if err := s.client.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("failed to clear tokens in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) key(sid string) string {
	return fmt.Sprintf("console:tokens:%s", sid)
}
