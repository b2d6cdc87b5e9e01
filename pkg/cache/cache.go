package cache

import (
	"context"
	"sync"
	"time"

	"github.com/pobyzaarif/goshortcute"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Store is the process-wide TTL memoization backing every filter and client.
// Entries are evicted lazily on lookup past expiry; RemoveExpired exposes an
// optional maintenance sweep but nothing schedules it. There is no size cap.
type Store struct {
	mu      sync.Mutex
	enabled bool
	entries map[string]entry
}

func NewStore(enabled bool) *Store {
	return &Store{
		enabled: enabled,
		entries: make(map[string]entry),
	}
}

func (s *Store) Enabled() bool {
	return s.enabled
}

// Get returns the cached value for key. An expired entry is dropped and
// reported as a miss.
func (s *Store) Get(key string) (any, bool) {
	if !s.enabled {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	if time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		return nil, false
	}

	return e.value, true
}

func (s *Store) Set(key string, value any, ttl time.Duration) {
	if !s.enabled {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = entry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]entry)
}

func (s *Store) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// RemoveExpired drops every expired entry and returns how many were removed.
func (s *Store) RemoveExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}

	return removed
}

// CachedFn memoizes one function against a Store. The key is the function
// name plus a base64 encoding of the key builder's output, so distinct
// arguments never collide across wrapped functions. Errors are not cached.
//
// Two goroutines missing on the same key may both invoke fn; the wrapped
// computations are idempotent and side-effect free, so the duplicate work is
// accepted in exchange for not holding a lock across network calls.
type CachedFn[A any, V any] struct {
	store *Store
	name  string
	ttl   time.Duration
	keyFn func(A) string
	fn    func(context.Context, A) (V, error)
}

func NewCachedFn[A any, V any](
	store *Store,
	name string,
	ttl time.Duration,
	keyFn func(A) string,
	fn func(context.Context, A) (V, error),
) *CachedFn[A, V] {
	return &CachedFn[A, V]{
		store: store,
		name:  name,
		ttl:   ttl,
		keyFn: keyFn,
		fn:    fn,
	}
}

func (c *CachedFn[A, V]) Call(ctx context.Context, arg A) (V, error) {
	if !c.store.Enabled() {
		return c.fn(ctx, arg)
	}

	key := c.name + ":" + goshortcute.StringtoBase64Encode(c.keyFn(arg))

	if cached, ok := c.store.Get(key); ok {
		if value, ok := cached.(V); ok {
			HitsTotal.WithLabelValues(c.name).Inc()
			return value, nil
		}
	}
	MissesTotal.WithLabelValues(c.name).Inc()

	value, err := c.fn(ctx, arg)
	if err != nil {
		return value, err
	}

	c.store.Set(key, value, c.ttl)
	return value, nil
}
