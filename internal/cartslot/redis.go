package cartslot

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore hands out per-session cart slots backed by Redis keys.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

// Client returns the underlying Redis client
func (s *RedisStore) Client() *redis.Client {
	return s.rdb
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Slot returns the durable slot for one session.
func (s *RedisStore) Slot(sessionID string) Slot {
	return &redisSlot{
		rdb: s.rdb,
		key: fmt.Sprintf("cart:%s", sessionID),
		ttl: s.ttl,
	}
}

type redisSlot struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func (r *redisSlot) Load(ctx context.Context) ([]byte, bool, error) {
	data, err := r.rdb.Get(ctx, r.key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}
	return data, true, nil
}

// Save writes the payload and refreshes the TTL, so active carts outlive
// the configured idle window.
func (r *redisSlot) Save(ctx context.Context, data []byte) error {
	if err := r.rdb.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *redisSlot) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del failed: %w", err)
	}
	return nil
}
