package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Cache backed by a Redis server.  Every key is stored under
// namespace so Clear never touches foreign data.
type Redis struct {
	rdb       *redis.Client
	namespace string
}

// NewRedis wraps rdb.  An empty namespace defaults to "cache".
func NewRedis(rdb *redis.Client, namespace string) *Redis {
	if namespace == "" {
		namespace = "cache"
	}
	return &Redis{rdb: rdb, namespace: namespace}
}

func (r *Redis) full(key string) string { return r.namespace + ":" + key }

func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, error) {
	bs, err := r.rdb.Get(ctx, r.full(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(bs, dst)
}

func (r *Redis) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0 // go-redis reads -1 as KEEPTTL
	}
	return r.rdb.Set(ctx, r.full(key), bs, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.full(k)
	}
	return r.rdb.Del(ctx, full...).Err()
}

// Clear walks the namespace with SCAN so large caches do not block the
// server the way KEYS would.
func (r *Redis) Clear(ctx context.Context, prefix string) error {
	iter := r.rdb.Scan(ctx, 0, r.full(prefix)+"*", 200).Iterator()
	batch := make([]string, 0, 200)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == cap(batch) {
			if err := r.rdb.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return r.rdb.Del(ctx, batch...).Err()
	}
	return nil
}
