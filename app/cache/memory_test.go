package cache

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(4)
	ctx := context.Background()

	c.Set(ctx, "key", "value", time.Minute)

	got, ok := c.Get(ctx, "key")
	if !ok {
		t.Fatal("Expected a cache hit")
	}
	if got != "value" {
		t.Errorf("Expected value, got %q", got)
	}

	if _, ok := c.Get(ctx, "other"); ok {
		t.Error("Expected a miss for an unknown key")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(4)
	ctx := context.Background()

	c.Set(ctx, "key", "value", -time.Second)

	if _, ok := c.Get(ctx, "key"); ok {
		t.Error("Expected an expired entry to miss")
	}
}

func TestMemoryCache_Eviction(t *testing.T) {
	c := NewMemoryCache(3)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		c.Set(ctx, fmt.Sprintf("key-%d", i), "value", time.Minute)
	}

	if c.Len() != 3 {
		t.Errorf("Expected capacity to hold at 3 entries, got %d", c.Len())
	}
	if _, ok := c.Get(ctx, "key-0"); ok {
		t.Error("Expected the oldest entry to be evicted")
	}
	if _, ok := c.Get(ctx, "key-3"); !ok {
		t.Error("Expected the newest entry to survive")
	}
}

func TestMemoryCache_OverwriteDoesNotEvict(t *testing.T) {
	c := NewMemoryCache(2)
	ctx := context.Background()

	c.Set(ctx, "a", "1", time.Minute)
	c.Set(ctx, "b", "2", time.Minute)
	c.Set(ctx, "a", "3", time.Minute)

	if c.Len() != 2 {
		t.Errorf("Expected 2 entries after overwrite, got %d", c.Len())
	}
	got, ok := c.Get(ctx, "a")
	if !ok || got != "3" {
		t.Errorf("Expected overwritten value 3, got %q (hit=%v)", got, ok)
	}
	if _, ok := c.Get(ctx, "b"); !ok {
		t.Error("Expected other entry to survive an overwrite")
	}
}
