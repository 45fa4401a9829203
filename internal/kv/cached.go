package kv

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"pocketledger/internal/cache"
)

// Cached is a read-through, write-through cache in front of another Store.
// Absent keys are never cached. Misses and writes are serialized so a slow
// miss cannot put a blob older than a concurrent write back into the cache.
type Cached struct {
	mu    sync.Mutex
	next  Store
	cache cache.Cache[[]byte]
}

// NewCached wraps next with c.
func NewCached(next Store, c cache.Cache[[]byte]) *Cached {
	return &Cached{next: next, cache: c}
}

func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	if blob, ok := c.cache.Get(key); ok {
		return bytes.Clone(blob), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if blob, ok := c.cache.Get(key); ok {
		return bytes.Clone(blob), nil
	}
	blob, err := c.next.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, bytes.Clone(blob))
	return blob, nil
}

func (c *Cached) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.next.Set(ctx, key, value); err != nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, bytes.Clone(value))
	return nil
}

func (c *Cached) Remove(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Delete(key)
	return c.next.Remove(ctx, key)
}

// Update implements Updater. It reads through to the next store, never the
// cache, and delegates to the next store's own Update when it has one.
func (c *Cached) Update(ctx context.Context, key string, fn func(current []byte, exists bool) ([]byte, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var written []byte
	record := func(current []byte, exists bool) ([]byte, error) {
		out, err := fn(current, exists)
		if err != nil {
			return nil, err
		}
		written = out
		return out, nil
	}

	var err error
	if u, ok := c.next.(Updater); ok {
		err = u.Update(ctx, key, record)
	} else {
		err = c.updateNext(ctx, key, record)
	}
	if err != nil || written == nil {
		c.cache.Delete(key)
		return err
	}
	c.cache.Set(key, bytes.Clone(written))
	return nil
}

func (c *Cached) updateNext(ctx context.Context, key string, fn func(current []byte, exists bool) ([]byte, error)) error {
	current, err := c.next.Get(ctx, key)
	exists := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	out, err := fn(current, exists)
	if err != nil {
		return err
	}
	return c.next.Set(ctx, key, out)
}
