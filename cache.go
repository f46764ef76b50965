package main

import (
	"strings"
	"sync"
	"time"
)

const defaultCacheTTL = time.Hour

// cacheKeySeparator joins the key parts; context strings keep their order.
const cacheKeySeparator = "||"

// CacheKey builds the composite lookup key for a classification request:
// activity text, ordered context, and the project-type tag.
func CacheKey(activityText string, contextLines []string, projectType string) string {
	return activityText + cacheKeySeparator + strings.Join(contextLines, "|") + cacheKeySeparator + projectType
}

// CacheStats is the counter snapshot exposed by the cache-stats endpoint.
type CacheStats struct {
	Hits          int `json:"hits"`
	Misses        int `json:"misses"`
	Sets          int `json:"sets"`
	Invalidations int `json:"invalidations"`
}

type cacheEntry struct {
	value     ClassificationResult
	expiresAt time.Time
}

// ClassificationCache is the process-wide key->result store shared by all
// in-flight enhancement calls. Expiry is lazy: an expired entry reads as a
// miss but stays in the map until the next bulk clear or a correction sweeps
// it out. The clock is injectable so expiry is testable without sleeping.
type ClassificationCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	stats   CacheStats
}

func NewClassificationCache(ttl time.Duration) *ClassificationCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &ClassificationCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached result for key, or a miss when the key is absent or
// its entry has expired.
func (c *ClassificationCache) Get(key string) (ClassificationResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		c.stats.Misses++
		return ClassificationResult{}, false
	}
	c.stats.Hits++
	return entry.value, true
}

// Set stores value under key with a fresh TTL window, overwriting any
// previous entry.
func (c *ClassificationCache) Set(key string, value ClassificationResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expiresAt: c.now().Add(c.ttl)}
	c.stats.Sets++
}

// InvalidateMatching removes every entry whose key contains text. Corrections
// use this with the corrected activity's text; matching is deliberately
// coarse and may sweep out neighbors that merely share the prefix.
func (c *ClassificationCache) InvalidateMatching(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if strings.Contains(key, text) {
			delete(c.entries, key)
			removed++
		}
	}
	c.stats.Invalidations += removed
	return removed
}

// Clear removes all entries, expired or not, and reports how many there were.
func (c *ClassificationCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := len(c.entries)
	c.entries = make(map[string]cacheEntry)
	c.stats.Invalidations += removed
	return removed
}

// Len reports the raw entry count, expired entries included.
func (c *ClassificationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ClassificationCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
