package cache

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type entry struct {
	value     []byte
	createdAt time.Time
	updatedAt time.Time
	maxAge    time.Duration
}

// Memory is an in-process store. Stale entries are reported as misses but
// stay in the map until overwritten or purged.
type Memory struct {
	entries *xsync.MapOf[string, entry]
	now     func() time.Time
}

type MemoryOption func(*Memory)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: xsync.NewMapOf[string, entry](),
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := m.entries.Load(key)
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.updatedAt.Add(e.maxAge)) {
		return nil, false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.now()
	v := make([]byte, len(value))
	copy(v, value)
	m.entries.Compute(key, func(old entry, loaded bool) (entry, bool) {
		created := now
		if loaded {
			created = old.createdAt
		}
		return entry{value: v, createdAt: created, updatedAt: now, maxAge: ttl}, false
	})
	return nil
}

func (m *Memory) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		m.entries.Delete(k)
	}
	return nil
}

func (m *Memory) PurgeAll(context.Context) error {
	m.entries.Clear()
	return nil
}

// Len counts stored entries, stale ones included.
func (m *Memory) Len() int { return m.entries.Size() }
