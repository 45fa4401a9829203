package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time { return f.t }

func newTestCache(maxSize int, ttl time.Duration) (*LRUCache[[]byte], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[[]byte](maxSize, ttl)
	c.now = clock.Now
	return c, clock
}

func TestLRUCacheGetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	if _, ok := c.Get("users"); ok {
		t.Fatalf("empty cache should miss")
	}
	c.Set("users", []byte("[]"))
	got, ok := c.Get("users")
	if !ok || string(got) != "[]" {
		t.Fatalf("expected hit with [], got %q ok=%v", got, ok)
	}

	c.Set("users", []byte(`[{"email":"a@b.co"}]`))
	got, _ = c.Get("users")
	if string(got) != `[{"email":"a@b.co"}]` {
		t.Fatalf("overwrite not visible: %q", got)
	}
	if c.Size() != 1 {
		t.Fatalf("overwrite should not grow cache, size=%d", c.Size())
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	c.Get("a") // a is now most recent
	c.Set("c", []byte("3"))

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a should still be cached")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	clock.t = clock.t.Add(2 * time.Minute)
	c.Set("c", []byte("3"))

	if _, ok := c.Get("a"); ok {
		t.Fatalf("a should have expired")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("expected 1 expired entry left to clean, got %d", removed)
	}
	if c.Size() != 1 {
		t.Fatalf("only c should remain, size=%d", c.Size())
	}
}

func TestLRUCacheOverwriteRefreshesEntry(t *testing.T) {
	c, clock := newTestCache(2, time.Minute)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	clock.t = clock.t.Add(45 * time.Second)
	c.Set("a", []byte("1b")) // a is newest again with a fresh ttl
	c.Set("c", []byte("3"))

	if _, ok := c.Get("b"); ok {
		t.Fatalf("b should have been evicted as the oldest entry")
	}
	clock.t = clock.t.Add(30 * time.Second)
	got, ok := c.Get("a")
	if !ok || string(got) != "1b" {
		t.Fatalf("a should outlive its first ttl, got %q ok=%v", got, ok)
	}
}

func TestLRUCacheDelete(t *testing.T) {
	c, _ := newTestCache(4, time.Minute)
	c.Set("a", []byte("1"))
	c.Delete("a")
	c.Delete("missing")
	if _, ok := c.Get("a"); ok {
		t.Fatalf("a should be gone")
	}
}

func TestManagerCleanAllAndStop(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("a", []byte("1"))
	clock.t = clock.t.Add(time.Hour)

	m := NewManager(nil)
	m.Register(c)
	if cleaned := m.CleanAll(); cleaned != 1 {
		t.Fatalf("expected 1 cleaned, got %d", cleaned)
	}

	// Stop without StartCleanup must not block
	m.Stop()
	m.Stop()

	started := NewManager(nil)
	started.StartCleanup(10 * time.Millisecond)
	started.Stop()
}
