package override

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"tasklane/pkg/domain"
)

// Redis key prefix for flag overrides.
const overrideKeyPrefix = "flag:override:"

// RedisStore is a Redis-backed override store for deployments where
// multiple instances need to share override state. Overrides have no TTL;
// they persist until explicitly cleared.
type RedisStore struct {
	client redis.Cmdable
}

// NewRedisStore constructs a Redis-backed override store.
func NewRedisStore(client redis.Cmdable) *RedisStore {
	return &RedisStore{client: client}
}

func redisKey(tenantID domain.TenantID, flagID string) string {
	return fmt.Sprintf("%s%s:%s", overrideKeyPrefix, flagID, tenantID)
}

// Get returns the override for (tenant, flag), or nil when none is set.
func (s *RedisStore) Get(ctx context.Context, tenantID domain.TenantID, flagID string) (*bool, error) {
	val, err := s.client.Get(ctx, redisKey(tenantID, flagID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get flag override: %w", err)
	}
	enabled := val == "1"
	return &enabled, nil
}

// Set records an override.
func (s *RedisStore) Set(ctx context.Context, tenantID domain.TenantID, flagID string, enabled bool) error {
	val := "0"
	if enabled {
		val = "1"
	}
	if err := s.client.Set(ctx, redisKey(tenantID, flagID), val, 0).Err(); err != nil {
		return fmt.Errorf("set flag override: %w", err)
	}
	return nil
}

// Delete removes an override if present.
func (s *RedisStore) Delete(ctx context.Context, tenantID domain.TenantID, flagID string) error {
	if err := s.client.Del(ctx, redisKey(tenantID, flagID)).Err(); err != nil {
		return fmt.Errorf("delete flag override: %w", err)
	}
	return nil
}
