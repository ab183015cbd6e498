package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ashureev/shotcoach/internal/domain"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore implements Store on Redis. Each session is one JSON value
// under "session:<shootID>/<roomType>"; expiry is delegated to Redis TTLs
// so the sweeper is unnecessary for this driver.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed session store. A ttl of 0 keeps sessions
// forever, matching the default lifecycle contract.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Get retrieves a session by key, or (nil, nil) when absent.
func (s *RedisStore) Get(ctx context.Context, key string) (*domain.ShootSession, error) {
	val, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var sess domain.ShootSession
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Put creates or replaces a session record, refreshing its TTL.
func (s *RedisStore) Put(ctx context.Context, session *domain.ShootSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+session.Key(), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// DeleteShoot removes all room sessions for a shoot via SCAN + DEL.
// Matching is done in Go against the exact escaped prefix rather than a
// SCAN glob, so shoot IDs containing glob metacharacters cannot widen or
// narrow the match.
func (s *RedisStore) DeleteShoot(ctx context.Context, shootID string) (int64, error) {
	prefix := redisKeyPrefix + domain.SessionKey(shootID, "")
	var removed int64

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if !strings.HasPrefix(iter.Val(), prefix) {
			continue
		}
		n, err := s.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return removed, fmt.Errorf("redis del: %w", err)
		}
		removed += n
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan: %w", err)
	}
	return removed, nil
}

// DeleteIdle is a no-op for Redis: per-key TTLs already handle expiry.
func (s *RedisStore) DeleteIdle(ctx context.Context, ttl time.Duration) (int64, error) {
	return 0, nil
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
