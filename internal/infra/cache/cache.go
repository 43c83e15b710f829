// Package cache provides a simple in-memory TTL cache.
// It backs the session store when Redis is not configured.
package cache

import (
	"sync"
	"time"
)

// minSweepInterval bounds how often expired entries are swept.
const minSweepInterval = time.Second

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e entry[T]) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemory is a thread-safe in-memory cache with TTL.
type InMemory[T any] struct {
	mu    sync.RWMutex
	items map[string]entry[T]
	ttl   time.Duration

	stop      chan struct{}
	closeOnce sync.Once
}

// New creates a new in-memory cache with the given default TTL and starts
// its sweeper. Call Close to stop it.
func New[T any](ttl time.Duration) *InMemory[T] {
	c := &InMemory[T]{
		items: make(map[string]entry[T]),
		ttl:   ttl,
		stop:  make(chan struct{}),
	}
	go c.sweep(max(ttl, minSweepInterval))
	return c
}

// Get retrieves a value. An expired entry is removed and reported as a miss.
func (c *InMemory[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	var zero T
	if !ok {
		return zero, false
	}
	if e.expired(time.Now()) {
		c.mu.Lock()
		if cur, still := c.items[key]; still && cur.expired(time.Now()) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return e.value, true
}

// Set stores a value with the default TTL.
func (c *InMemory[T]) Set(key string, value T) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value that expires after ttl.
func (c *InMemory[T]) SetWithTTL(key string, value T, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[T]{value: value, expiresAt: time.Now().Add(ttl)}
}

// Delete removes a value.
func (c *InMemory[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Len returns the number of stored entries, expired ones included until swept.
func (c *InMemory[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Close stops the sweeper. The cache stays usable.
func (c *InMemory[T]) Close() {
	c.closeOnce.Do(func() { close(c.stop) })
}

func (c *InMemory[T]) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.mu.Lock()
			for k, e := range c.items {
				if e.expired(now) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		}
	}
}
