package services

import (
	"sync"
	"time"
)

// DefaultStaleTime is how long a fetched list is served without refetching.
const DefaultStaleTime = 5 * time.Minute

type cacheEntry[T any] struct {
	value   T
	fetched time.Time
}

// queryCache memoizes read results per key until they go stale or the
// cache is invalidated. A fetch started before an invalidate must not
// repopulate the cache, so get hands out the generation the miss was seen
// in and put only stores under that same generation.
type queryCache[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	gen     uint64
	entries map[string]cacheEntry[T]
}

func newQueryCache[T any](ttl time.Duration) *queryCache[T] {
	return &queryCache[T]{ttl: ttl, now: time.Now, entries: make(map[string]cacheEntry[T])}
}

func (c *queryCache[T]) get(key string) (T, uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetched) >= c.ttl {
		var zero T
		return zero, c.gen, false
	}
	return e.value, c.gen, true
}

// put stores v unless the cache was invalidated after gen was observed.
func (c *queryCache[T]) put(key string, gen uint64, v T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.entries[key] = cacheEntry[T]{value: v, fetched: c.now()}
	return true
}

func (c *queryCache[T]) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	clear(c.entries)
}

type QueryOption func(*queryOptions)

type queryOptions struct {
	staleTime time.Duration
}

// WithStaleTime overrides DefaultStaleTime. A zero value disables caching.
func WithStaleTime(d time.Duration) QueryOption {
	return func(o *queryOptions) { o.staleTime = d }
}

func buildQueryOptions(opts []QueryOption) queryOptions {
	o := queryOptions{staleTime: DefaultStaleTime}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
