// Package cache stores rendered JSON responses keyed by request path and
// normalized query string.
package cache

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Store is a response cache. A miss is (nil, false, nil).
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	PurgeAll(ctx context.Context) error
}

// Key builds the cache key for a request. url.Values.Encode sorts by name, so
// the same parameters in a different order share an entry. The result never
// aliases path, which may point into a reused request buffer.
func Key(path string, q url.Values) string {
	if len(q) == 0 {
		return strings.Clone(path)
	}
	return path + "::" + q.Encode()
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Nop) Delete(context.Context, ...string) error { return nil }
func (Nop) PurgeAll(context.Context) error { return nil }
