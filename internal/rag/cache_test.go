package rag

import (
	"testing"
	"time"

	"ragserver/internal/vectorstore"
)

func TestCacheSetGet(t *testing.T) {
	cache := NewCache()
	results := []vectorstore.SearchResult{{FragmentID: 1, Content: "hello"}}

	cache.Set("greeting", 5, results)

	got, ok := cache.Get("greeting", 5)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].Content != "hello" {
		t.Errorf("unexpected cached results: %+v", got)
	}
}

func TestCacheMiss(t *testing.T) {
	cache := NewCache()

	if _, ok := cache.Get("unknown", 5); ok {
		t.Error("expected cache miss for unknown query")
	}

	cache.Set("greeting", 5, nil)
	if _, ok := cache.Get("greeting", 10); ok {
		t.Error("same query with different limit should miss")
	}
}

func TestCacheExpiry(t *testing.T) {
	cache := NewCache()
	current := time.Now()
	cache.now = func() time.Time { return current }

	cache.Set("greeting", 5, []vectorstore.SearchResult{{FragmentID: 1}})

	current = current.Add(59 * time.Minute)
	if _, ok := cache.Get("greeting", 5); !ok {
		t.Error("entry should still be fresh before the TTL")
	}

	current = current.Add(2 * time.Minute)
	if _, ok := cache.Get("greeting", 5); ok {
		t.Error("entry should expire after the TTL")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry should be removed, have %d entries", cache.Len())
	}
}

func TestCacheInvalidateAll(t *testing.T) {
	cache := NewCache()
	cache.Set("a", 5, nil)
	cache.Set("b", 5, nil)

	cache.InvalidateAll()

	if cache.Len() != 0 {
		t.Errorf("expected empty cache, have %d entries", cache.Len())
	}
	if _, ok := cache.Get("a", 5); ok {
		t.Error("expected miss after invalidation")
	}
}

func TestCacheKey(t *testing.T) {
	if cacheKey("query", 5) == cacheKey("query", 6) {
		t.Error("limit should be part of the key")
	}
	if cacheKey("a", 5) == cacheKey("b", 5) {
		t.Error("query should be part of the key")
	}
	if cacheKey("query", 5) != cacheKey("query", 5) {
		t.Error("key should be deterministic")
	}
}
