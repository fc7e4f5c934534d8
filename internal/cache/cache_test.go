package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a missing")
	}
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("%s missing", k)
		}
	}
	if c.Size() != 2 {
		t.Errorf("Size = %d, want 2", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clock.t = clock.t.Add(30 * time.Second)
	c.Set("b", "3")
	clock.t = clock.t.Add(45 * time.Second)

	if _, ok := c.Get("a"); ok {
		t.Error("a should have expired")
	}
	if v, ok := c.Get("b"); !ok || v != "3" {
		t.Errorf("b = %q, %v", v, ok)
	}

	clock.t = clock.t.Add(time.Hour)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size = %d after cleanup", c.Size())
	}
}

func TestLRUCache_DisabledAndStats(t *testing.T) {
	c, _ := newTestCache(0, time.Minute)
	c.Set("a", "1")
	if _, ok := c.Get("a"); ok {
		t.Error("zero-size cache stored a value")
	}

	c, _ = newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Get("a")
	c.Get("missing")
	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 || s.Size != 1 {
		t.Errorf("Stats = %+v", s)
	}

	c.Delete("a")
	c.Set("b", "2")
	c.Purge()
	if c.Size() != 0 {
		t.Error("Purge left entries")
	}
}

func TestResponseKey(t *testing.T) {
	a := ResponseKey(3, "/api/analytics/trends", "start=2025-01&end=2025-03")
	b := ResponseKey(3, "/api/analytics/trends", "end=2025-03&start=2025-01")
	if a != b {
		t.Errorf("query order changed the key: %q vs %q", a, b)
	}
	if a == ResponseKey(4, "/api/analytics/trends", "start=2025-01&end=2025-03") {
		t.Error("revision is not part of the key")
	}
}

func TestManager(t *testing.T) {
	c, clock := newTestCache(4, time.Second)
	c.Set("a", "1")
	clock.t = clock.t.Add(time.Minute)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanNow(); n != 1 {
		t.Errorf("CleanNow = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()

	NewManager(nil).Stop()
}
