package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edufiliova/navigator/model"
)

// Redis key prefixes.
const (
	lastPagePrefix  = "nav:last_page:"
	onboardedPrefix = "nav:onboarded:"
)

// RedisStore is a Redis-backed PreferenceStore. Last-visited entries expire
// after the configured TTL; the onboarding flag does not expire.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore creates a store over client.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultLastPageTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// DialRedis parses redisURL, connects and pings the server.
func DialRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

// LastVisited implements PreferenceStore.
func (s *RedisStore) LastVisited(ctx context.Context, deviceID string) (model.PageState, error) {
	key := lastPagePrefix + deviceID
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %q: %w", key, err)
	}
	return model.PageState(v), nil
}

// SetLastVisited implements PreferenceStore.
func (s *RedisStore) SetLastVisited(ctx context.Context, deviceID string, state model.PageState) error {
	key := lastPagePrefix + deviceID
	if err := s.client.Set(ctx, key, string(state), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Onboarded implements PreferenceStore.
func (s *RedisStore) Onboarded(ctx context.Context, deviceID string) (bool, error) {
	key := onboardedPrefix + deviceID
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %q: %w", key, err)
	}
	return n == 1, nil
}

// MarkOnboarded implements PreferenceStore.
func (s *RedisStore) MarkOnboarded(ctx context.Context, deviceID string) error {
	key := onboardedPrefix + deviceID
	if err := s.client.Set(ctx, key, "true", 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// HealthCheck pings the server.
func (s *RedisStore) HealthCheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
