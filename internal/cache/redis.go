package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "isuumo:resp:"
	purgeBatch    = 256
)

// Redis shares cached responses between app instances. Keys are hashed; the
// full key is stored in front of the body so a hash collision reads as a miss.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) redisKey(key string) string {
	return r.prefix + strconv.FormatUint(xxhash.Sum64String(key), 16)
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: redis get: %w", err)
	}
	head := []byte(key + "\x00")
	if !bytes.HasPrefix(b, head) {
		return nil, false, nil
	}
	return b[len(head):], true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, 0, len(key)+1+len(value))
	buf = append(buf, key...)
	buf = append(buf, 0)
	buf = append(buf, value...)
	if err := r.client.Set(ctx, r.redisKey(key), buf, ttl).Err(); err != nil {
		return fmt.Errorf("cache: redis set: %w", err)
	}
	return nil
}

// Delete drops the entries for keys. Missing keys are not an error.
func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	hashed := make([]string, len(keys))
	for i, k := range keys {
		hashed[i] = r.redisKey(k)
	}
	if err := r.client.Del(ctx, hashed...).Err(); err != nil {
		return fmt.Errorf("cache: redis del: %w", err)
	}
	return nil
}

// PurgeAll removes every key under the store's prefix. The scan completes
// before anything is deleted so the cursor never walks a shrinking keyspace.
func (r *Redis) PurgeAll(ctx context.Context) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", purgeBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache: redis scan: %w", err)
	}
	for len(keys) > 0 {
		n := min(len(keys), purgeBatch)
		if err := r.client.Del(ctx, keys[:n]...).Err(); err != nil {
			return fmt.Errorf("cache: redis purge: %w", err)
		}
		keys = keys[n:]
	}
	return nil
}
