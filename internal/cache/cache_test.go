// v1
// internal/cache/cache_test.go
package cache

import (
	"testing"
	"time"
)

type countingObserver struct {
	hits, misses int
}

func (o *countingObserver) CacheHit()  { o.hits++ }
func (o *countingObserver) CacheMiss() { o.misses++ }

func TestGetSetRoundTrip(t *testing.T) {
	c := New[string](time.Minute, nil)
	c.Set("k", "v")
	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Fatalf("expected hit with v, got %q (ok=%v)", got, ok)
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	c := New[int](time.Nanosecond, nil)
	c.Set("k", 7)
	time.Sleep(time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry must be dropped on access, len=%d", c.Len())
	}
}

func TestObserverCounts(t *testing.T) {
	obs := &countingObserver{}
	c := New[int](time.Minute, obs)
	c.Get("absent")
	c.Set("k", 1)
	c.Get("k")

	if obs.misses != 1 || obs.hits != 1 {
		t.Fatalf("expected 1 miss / 1 hit, got %d/%d", obs.misses, obs.hits)
	}
}
