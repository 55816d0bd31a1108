// Package cache provides a single-value cache with a time-to-live, meant to
// be owned by the component that reads through it.
package cache

import (
	"context"
	"sync"
	"time"
)

// Loader fetches a fresh value.
type Loader[T any] func(ctx context.Context) (T, error)

// Cache holds the last loaded value until it expires or is invalidated
type Cache[T any] struct {
	mu        sync.Mutex
	load      Loader[T]
	ttl       time.Duration
	now       func() time.Time
	value     T
	fetchedAt time.Time
	valid     bool
}

// Option customizes a Cache.
type Option[T any] func(*Cache[T])

// WithClock replaces time.Now, mainly for tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(c *Cache[T]) {
		c.now = now
	}
}

// New creates a cache over load. A ttl of zero or less disables caching:
// every Get loads.
func New[T any](ttl time.Duration, load Loader[T], opts ...Option[T]) *Cache[T] {
	c := &Cache[T]{load: load, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value while it is fresh and loads it otherwise.
// A failed load leaves the cache empty and returns the error.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.value, nil
	}
	return c.refreshLocked(ctx)
}

// Refresh loads a new value regardless of freshness
func (c *Cache[T]) Refresh(ctx context.Context) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *Cache[T]) refreshLocked(ctx context.Context) (T, error) {
	value, err := c.load(ctx)
	if err != nil {
		c.invalidateLocked()
		var zero T
		return zero, err
	}
	c.value = value
	c.fetchedAt = c.now()
	c.valid = true
	return value, nil
}

// Invalidate drops the cached value so the next Get loads
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Cache[T]) invalidateLocked() {
	var zero T
	c.value = zero
	c.valid = false
	c.fetchedAt = time.Time{}
}

// Fresh reports whether a Get would be served without loading.
func (c *Cache[T]) Fresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valid && c.now().Sub(c.fetchedAt) < c.ttl
}

// FetchedAt is the time of the last successful load, zero when empty.
func (c *Cache[T]) FetchedAt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetchedAt
}
