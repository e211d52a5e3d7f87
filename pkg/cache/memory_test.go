package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type sample struct {
	Symbol string  `json:"symbol"`
	Close  float64 `json:"close"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", sample{Symbol: "AAPL", Close: 188.9}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got sample
	if err := mc.Get(ctx, "k", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Symbol != "AAPL" || got.Close != 188.9 {
		t.Fatalf("unexpected value %+v", got)
	}

	if err := mc.Set(ctx, "s", "plain", 0); err != nil {
		t.Fatalf("set string: %v", err)
	}
	var s string
	if err := mc.Get(ctx, "s", &s); err != nil || s != "plain" {
		t.Fatalf("string round trip: %q %v", s, err)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	_ = mc.Set(ctx, "k", "v", time.Second)
	now = now.Add(2 * time.Second)

	var s string
	if err := mc.Get(ctx, "k", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
	if mc.Len() != 0 {
		t.Fatalf("expected expired entry dropped, len=%d", mc.Len())
	}
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", 0)
	_ = mc.Set(ctx, "b", "2", 0)
	var s string
	_ = mc.Get(ctx, "a", &s)
	_ = mc.Set(ctx, "c", "3", 0)

	if err := mc.Get(ctx, "b", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected b evicted, got %v", err)
	}
	if err := mc.Get(ctx, "a", &s); err != nil || s != "1" {
		t.Fatalf("expected a kept, got %q %v", s, err)
	}
}

func TestMemoryCacheUnbounded(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(0))
	defer mc.Close()
	ctx := context.Background()

	for i := 0; i < 2500; i++ {
		_ = mc.Set(ctx, GenerateKeyWithParams("k", i), i, 0)
	}
	if mc.Len() != 2500 {
		t.Fatalf("expected nothing evicted, len=%d", mc.Len())
	}
}

func TestMemoryCacheLock(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(1))
	defer mc.Close()
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return now }

	ok, err := mc.TryLock(ctx, "job", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock: %v %v", ok, err)
	}
	if ok, _ := mc.TryLock(ctx, "job", time.Minute); ok {
		t.Fatalf("second lock should fail")
	}

	// values never push a lock out
	_ = mc.Set(ctx, "x", "1", 0)
	_ = mc.Set(ctx, "y", "2", 0)
	if ok, _ := mc.TryLock(ctx, "job", time.Minute); ok {
		t.Fatalf("lock evicted by values")
	}

	_ = mc.Unlock(ctx, "job")
	if ok, _ := mc.TryLock(ctx, "job", time.Minute); !ok {
		t.Fatalf("lock after unlock should succeed")
	}

	now = now.Add(2 * time.Minute)
	if ok, _ := mc.TryLock(ctx, "job", time.Minute); !ok {
		t.Fatalf("expired lock should be reacquired")
	}
}

func TestGenerateKeyWithParams(t *testing.T) {
	got := GenerateKeyWithParams("series", "yahoo", "AAPL", "1d")
	if got != "series:yahoo:AAPL:1d" {
		t.Fatalf("unexpected key %q", got)
	}
}
