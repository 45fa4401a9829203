package cache

import (
	"sync"
	"time"
)

// LRUCache bounds its entries by count and by age. Entries sit on an
// intrusive ring whose front is the most recently used.
type LRUCache[T any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	index    map[string]*lruEntry[T]
	ring     lruEntry[T] // sentinel: ring.next is newest, ring.prev is oldest
}

type lruEntry[T any] struct {
	key        string
	value      T
	expires    time.Time
	prev, next *lruEntry[T]
}

// NewLRUCache returns a cache holding at most capacity entries, each for ttl.
func NewLRUCache[T any](capacity int, ttl time.Duration) *LRUCache[T] {
	c := &LRUCache[T]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		index:    make(map[string]*lruEntry[T], capacity),
	}
	c.ring.next = &c.ring
	c.ring.prev = &c.ring
	return c
}

// Get returns the live value for key and marks it most recently used.
func (c *LRUCache[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	if c.now().After(e.expires) {
		c.drop(e)
		var zero T
		return zero, false
	}
	c.touch(e)
	return e.value, true
}

// Set stores value under key, evicting the oldest entry when full.
func (c *LRUCache[T]) Set(key string, value T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if e, ok := c.index[key]; ok {
		e.value = value
		e.expires = expires
		c.touch(e)
		return
	}

	e := &lruEntry[T]{key: key, value: value, expires: expires}
	c.index[key] = e
	c.pushFront(e)
	if len(c.index) > c.capacity {
		c.drop(c.ring.prev)
	}
}

// Delete forgets key.
func (c *LRUCache[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.index[key]; ok {
		c.drop(e)
	}
}

// CleanExpired drops every expired entry and reports how many went.
func (c *LRUCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for e := c.ring.prev; e != &c.ring; {
		older := e.prev
		if now.After(e.expires) {
			c.drop(e)
			removed++
		}
		e = older
	}
	return removed
}

// Size reports the number of entries, expired ones included until touched.
func (c *LRUCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

func (c *LRUCache[T]) touch(e *lruEntry[T]) {
	if c.ring.next == e {
		return
	}
	unlink(e)
	c.pushFront(e)
}

func (c *LRUCache[T]) pushFront(e *lruEntry[T]) {
	e.prev = &c.ring
	e.next = c.ring.next
	c.ring.next.prev = e
	c.ring.next = e
}

func (c *LRUCache[T]) drop(e *lruEntry[T]) {
	unlink(e)
	delete(c.index, e.key)
}

func unlink[T any](e *lruEntry[T]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev, e.next = nil, nil
}
