package localstore

import (
	"context"

	"socialdash/internal/cache"
)

// RedisStore keeps items in redis under a key prefix, without expiry.
type RedisStore struct {
	client *cache.Client
	prefix string
}

// NewRedisStore returns a store that namespaces keys with prefix.
func NewRedisStore(client *cache.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	data, err := r.client.Fetch(ctx, r.prefix+key)
	if err != nil {
		return "", false, err
	}
	if data == nil {
		return "", false, nil
	}
	return string(data), true, nil
}

func (r *RedisStore) SetItem(ctx context.Context, key, value string) error {
	return r.client.Store(ctx, r.prefix+key, []byte(value), 0)
}

func (r *RedisStore) RemoveItem(ctx context.Context, key string) error {
	return r.client.Remove(ctx, r.prefix+key)
}
