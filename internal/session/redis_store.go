package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ontimely/admin-portal/internal/domain"
)

// RedisStore persists the record of a single client installation under its own key.
type RedisStore struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
}

// NewRedisStore binds a store to clientID. A zero ttl keeps the record until cleared.
func NewRedisStore(client redis.Cmdable, prefix, clientID string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, key: prefix + clientID, ttl: ttl}
}

// Key returns the Redis key backing this store.
func (r *RedisStore) Key() string {
	return r.key
}

func (r *RedisStore) Read(ctx context.Context) (*domain.SessionRecord, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	return decodeRecord(data)
}

func (r *RedisStore) Write(ctx context.Context, email, token string) error {
	data, err := encodeRecord(email, token)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
