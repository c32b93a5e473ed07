package cache

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"
)

func TestCache_SetGet(t *testing.T) {
	c := New[string](time.Minute, 0, nil)

	c.Set(Key("a.ts"), "value", "hash1")
	got, ok := c.Get(Key("a.ts"), "hash1")
	if !ok {
		t.Fatal("Get() missed immediately after Set()")
	}
	if got != "value" {
		t.Errorf("Get() = %q, want %q", got, "value")
	}

	stats := c.GetStats()
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 0 {
		t.Errorf("Misses = %d, want 0", stats.Misses)
	}
}

func TestCache_MissOnAbsentKey(t *testing.T) {
	c := New[int](time.Minute, 0, nil)

	if _, ok := c.Get(Key("missing.ts"), "hash"); ok {
		t.Error("Get() hit on an absent key")
	}
	if stats := c.GetStats(); stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
}

func TestCache_ContentHashMismatch(t *testing.T) {
	c := New[int](time.Minute, 0, nil)

	c.Set("k", 42, "old-hash")
	if _, ok := c.Get("k", "new-hash"); ok {
		t.Error("Get() hit despite a content hash mismatch")
	}

	// The stale entry is deleted, not retained.
	if stats := c.GetStats(); stats.Entries != 0 {
		t.Errorf("Entries = %d after stale get, want 0", stats.Entries)
	}
}

func TestCache_TTLExpiry(t *testing.T) {
	c := New[int](time.Hour, 0, nil)

	base := time.Now()
	c.now = func() time.Time { return base }
	c.Set("k", 42, "hash")

	c.now = func() time.Time { return base.Add(30 * time.Minute) }
	if _, ok := c.Get("k", "hash"); !ok {
		t.Error("Get() missed before TTL elapsed")
	}

	c.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, ok := c.Get("k", "hash"); ok {
		t.Error("Get() hit after TTL elapsed")
	}
}

func TestCache_EvictsOldestWhenFull(t *testing.T) {
	// Flat 100-byte entries against a 1000-byte ceiling: inserting the
	// 11th entry evicts the oldest.
	c := New[int](time.Hour, 1000, func(int) int64 { return 100 })

	base := time.Now()
	for i := 0; i < 10; i++ {
		tick := base.Add(time.Duration(i) * time.Second)
		c.now = func() time.Time { return tick }
		c.Set(fmt.Sprintf("k%d", i), i, "hash")
	}

	c.now = func() time.Time { return base.Add(time.Minute) }
	c.Set("k10", 10, "hash")

	if _, ok := c.Get("k0", "hash"); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := c.Get("k10", "hash"); !ok {
		t.Error("newest entry missing after eviction")
	}
	if stats := c.GetStats(); stats.Evictions == 0 {
		t.Error("Evictions = 0, want > 0")
	}
}

func TestCache_InvalidateMatching(t *testing.T) {
	c := New[int](time.Hour, 0, nil)
	c.Set(Key("src/a.ts"), 1, "h")
	c.Set(Key("src/b.ts"), 2, "h")
	c.Set(Key("lib/c.ts"), 3, "h")

	removed := c.InvalidateMatching(regexp.MustCompile(`src/`))
	if removed != 2 {
		t.Errorf("InvalidateMatching() = %d, want 2", removed)
	}
	if _, ok := c.Get(Key("lib/c.ts"), "h"); !ok {
		t.Error("non-matching entry was removed")
	}
}

func TestCache_ClearKeepsCounters(t *testing.T) {
	c := New[int](time.Hour, 0, nil)
	c.Set("k", 1, "h")
	c.Get("k", "h")
	c.Get("absent", "h")

	c.Clear()

	stats := c.GetStats()
	if stats.Entries != 0 {
		t.Errorf("Entries = %d after Clear, want 0", stats.Entries)
	}
	if stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("counters = %d hits / %d misses after Clear, want 1/1", stats.Hits, stats.Misses)
	}
}

func TestCache_HitRate(t *testing.T) {
	c := New[int](time.Hour, 0, nil)
	c.Set("k", 1, "h")
	c.Get("k", "h")
	c.Get("k", "h")
	c.Get("absent", "h")
	c.Get("also-absent", "h")

	if rate := c.GetStats().HitRate; rate != 0.5 {
		t.Errorf("HitRate = %v, want 0.5", rate)
	}
}

func TestCache_Warm(t *testing.T) {
	c := New[string](time.Hour, 0, nil)

	var computed []string
	err := c.Warm(context.Background(), []string{"a", "b", "b"}, WarmOptions{BatchSize: 1},
		func(_ context.Context, key string) (string, string, error) {
			if key == "b" {
				return "", "", errors.New("unreadable")
			}
			computed = append(computed, key)
			return "v:" + key, "hash", nil
		})
	if err != nil {
		t.Fatalf("Warm() error = %v", err)
	}

	// Duplicates collapse, failures are swallowed.
	if len(computed) != 1 || computed[0] != "a" {
		t.Errorf("computed keys = %v, want [a]", computed)
	}
	if _, ok := c.Get("a", "hash"); !ok {
		t.Error("warmed entry missing")
	}
	if _, ok := c.Get("b", "hash"); ok {
		t.Error("failed key was cached")
	}
}

func TestCache_WarmCancelled(t *testing.T) {
	c := New[string](time.Hour, 0, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Warm(ctx, []string{"a"}, WarmOptions{},
		func(context.Context, string) (string, string, error) {
			t.Fatal("compute called after cancellation")
			return "", "", nil
		})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Warm() error = %v, want context.Canceled", err)
	}
}

func TestCache_WarmRefreshesTopHits(t *testing.T) {
	c := New[string](time.Hour, 0, nil)
	c.Set("hot", "old", "h")
	c.Get("hot", "h")
	c.Get("hot", "h")
	c.Set("cold", "old", "h")

	err := c.Warm(context.Background(), nil, WarmOptions{TopHits: 1},
		func(_ context.Context, key string) (string, string, error) {
			return "new:" + key, "h2", nil
		})
	if err != nil {
		t.Fatalf("Warm() error = %v", err)
	}

	got, ok := c.Get("hot", "h2")
	if !ok || got != "new:hot" {
		t.Errorf("hot entry = %q (hit=%v), want refreshed value", got, ok)
	}
	if _, ok := c.Get("cold", "h2"); ok {
		t.Error("cold entry was refreshed despite TopHits=1")
	}
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("hello"))
	b := HashBytes([]byte("hello"))
	diff := HashBytes([]byte("world"))

	if a != b {
		t.Error("HashBytes is not deterministic")
	}
	if a == diff {
		t.Error("HashBytes collided on different inputs")
	}
	if len(a) != 64 {
		t.Errorf("hash hex length = %d, want 64", len(a))
	}
}

func TestKeyRoundTrip(t *testing.T) {
	key := Key("src/a.ts")
	if key != "analysis:src/a.ts" {
		t.Errorf("Key() = %q", key)
	}
	if got := PathFromKey(key); got != "src/a.ts" {
		t.Errorf("PathFromKey() = %q, want %q", got, "src/a.ts")
	}
}
