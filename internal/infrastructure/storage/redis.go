package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/academyhq/academy-client/internal/core/domain"
	"github.com/academyhq/academy-client/internal/core/ports"
)

const (
	defaultConnectTimeout = 5 * time.Second
	projectionKeyPrefix   = "academy:projection:"
)

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect initialises a Redis client and validates connectivity with a ping.
// A default timeout is applied when none is provided.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

// RedisStore persists the identity projection in Redis, keyed per seat.
// Useful for kiosk machines where several terminals share one client state
// backend.
type RedisStore struct {
	client *redis.Client
	key    string
}

var _ ports.ProjectionStore = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore for the given seat name.
func NewRedisStore(client *redis.Client, seat string) *RedisStore {
	if seat == "" {
		seat = "default"
	}
	return &RedisStore{client: client, key: projectionKeyPrefix + seat}
}

// Load reads the persisted projection.
func (s *RedisStore) Load(ctx context.Context) (*domain.Identity, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNoProjection
		}
		return nil, fmt.Errorf("read identity projection: %w", err)
	}
	var identity domain.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("decode identity projection: %w", err)
	}
	return &identity, nil
}

// Save replaces the persisted projection. No TTL: the projection lives until
// logout or verification failure clears it.
func (s *RedisStore) Save(ctx context.Context, identity *domain.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity projection: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("write identity projection: %w", err)
	}
	return nil
}

// Clear removes the persisted projection.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("remove identity projection: %w", err)
	}
	return nil
}
