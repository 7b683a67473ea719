package rag

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"ragserver/internal/vectorstore"
)

// cacheTTL is how long a cached search result stays fresh.
const cacheTTL = time.Hour

type cacheEntry struct {
	results   []vectorstore.SearchResult
	expiresAt time.Time
}

// Cache memoizes plain search results keyed by query and limit. Entries
// expire after cacheTTL; InvalidateAll drops everything at once. Safe for
// concurrent use.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     cacheTTL,
		now:     time.Now,
	}
}

func cacheKey(query string, limit int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s:%d", query, limit)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached results for a query, or false when absent or
// expired. Expired entries are removed on access.
func (c *Cache) Get(query string, limit int) ([]vectorstore.SearchResult, bool) {
	key := cacheKey(query, limit)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return entry.results, true
}

// Set stores results for a query.
func (c *Cache) Set(query string, limit int, results []vectorstore.SearchResult) {
	key := cacheKey(query, limit)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		results:   results,
		expiresAt: c.now().Add(c.ttl),
	}
}

// InvalidateAll empties the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len reports how many entries the cache currently holds, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
