package querycache

import (
	"context"
	"encoding/json"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/One-Minute-Stack/oneminutelogs-next/internal/filter"
)

// QueryFunc performs the actual collector round-trip for a filter set.
type QueryFunc func(ctx context.Context, f filter.Filters) ([]json.RawMessage, error)

// Cache memoizes point-in-time query results and deduplicates concurrent
// identical requests. Resolved results are retained until explicitly
// invalidated; there is no TTL expiry. Failures cache nothing, so the next
// call retries.
type Cache struct {
	query QueryFunc

	mu      sync.Mutex
	results map[string][]json.RawMessage
	flight  singleflight.Group
}

// New constructs a Cache over query.
func New(query QueryFunc) *Cache {
	return &Cache{query: query, results: map[string][]json.RawMessage{}}
}

// Fetch returns the cached result for f when present. Otherwise it joins any
// in-flight request for the same canonical key, or starts one. The underlying
// round-trip runs on a detached context so that one caller's cancellation
// cannot corrupt the result observed by co-waiting callers; the canceled
// caller alone gets its ctx error.
func (c *Cache) Fetch(ctx context.Context, f filter.Filters) ([]json.RawMessage, error) {
	key := filter.Key(f)
	c.mu.Lock()
	if res, ok := c.results[key]; ok {
		c.mu.Unlock()
		return res, nil
	}
	c.mu.Unlock()

	ch := c.flight.DoChan(key, func() (any, error) {
		res, err := c.query(context.WithoutCancel(ctx), f)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.results[key] = res
		c.mu.Unlock()
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]json.RawMessage), nil
	}
}

// Refetch evicts the entry for f and fetches again, guaranteeing a fresh
// network round-trip even when a resolved result existed.
func (c *Cache) Refetch(ctx context.Context, f filter.Filters) ([]json.RawMessage, error) {
	key := filter.Key(f)
	c.mu.Lock()
	delete(c.results, key)
	c.mu.Unlock()
	c.flight.Forget(key)
	return c.Fetch(ctx, f)
}

// Invalidate evicts the resolved result for f, if any.
func (c *Cache) Invalidate(f filter.Filters) {
	c.mu.Lock()
	delete(c.results, filter.Key(f))
	c.mu.Unlock()
}

// Reset drops every resolved result.
func (c *Cache) Reset() {
	c.mu.Lock()
	c.results = map[string][]json.RawMessage{}
	c.mu.Unlock()
}
