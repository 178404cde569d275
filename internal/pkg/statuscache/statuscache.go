// Package statuscache provides a small stale-while-revalidate cache for
// per-session snapshots such as the contribution status shown in the navbar.
// Entries live for a fixed TTL; a read of a stale entry returns the stale
// value immediately and refreshes it once in the background.
package statuscache

import (
	"context"
	"log"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long a snapshot is considered fresh.
const DefaultTTL = 60 * time.Second

// hardExpiry keeps stale entries around long enough to serve while a refresh
// runs, without letting abandoned sessions accumulate forever.
const hardExpiry = 10 * time.Minute

// Loader fetches a fresh value for a key.
type Loader[T any] func(ctx context.Context, key string) (T, error)

type entry[T any] struct {
	value     T
	fetchedAt time.Time
}

// Cache is a keyed stale-while-revalidate cache.
type Cache[T any] struct {
	ttl    time.Duration
	load   Loader[T]
	store  *gocache.Cache
	mu     sync.Mutex
	inWork map[string]struct{}
}

// New builds a cache with the given TTL (DefaultTTL when zero or negative).
func New[T any](ttl time.Duration, load Loader[T]) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{
		ttl:    ttl,
		load:   load,
		store:  gocache.New(hardExpiry, 2*hardExpiry),
		inWork: make(map[string]struct{}),
	}
}

// Get returns the cached value for key. A fresh entry is returned as-is; a
// stale entry is returned immediately while one background refresh runs; a
// missing entry is loaded synchronously.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, error) {
	if raw, ok := c.store.Get(key); ok {
		e := raw.(entry[T])
		if time.Since(e.fetchedAt) > c.ttl {
			c.refreshAsync(key)
		}
		return e.value, nil
	}

	value, err := c.load(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	c.put(key, value)
	return value, nil
}

// Invalidate drops the entry so the next read loads fresh. Call after any
// write that changes the underlying snapshot.
func (c *Cache[T]) Invalidate(key string) {
	c.store.Delete(key)
}

// Put stores a value directly, marking it fresh. Useful when a write path
// already has the new snapshot in hand.
func (c *Cache[T]) Put(key string, value T) {
	c.put(key, value)
}

func (c *Cache[T]) put(key string, value T) {
	c.store.Set(key, entry[T]{value: value, fetchedAt: time.Now()}, gocache.DefaultExpiration)
}

// refreshAsync starts at most one background reload per key.
func (c *Cache[T]) refreshAsync(key string) {
	c.mu.Lock()
	if _, busy := c.inWork[key]; busy {
		c.mu.Unlock()
		return
	}
	c.inWork[key] = struct{}{}
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			delete(c.inWork, key)
			c.mu.Unlock()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		value, err := c.load(ctx, key)
		if err != nil {
			// Keep serving the stale value; the next stale read retries.
			log.Printf("Status cache refresh failed for %s: %v", key, err)
			return
		}
		c.put(key, value)
	}()
}
