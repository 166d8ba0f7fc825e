package main

import (
	"fmt"
	"sync"
	"time"
)

// Default TTLs by key class. The cache itself is policy-agnostic; callers
// pick the class that matches what they are storing.
const (
	MetadataTTL    = 24 * time.Hour
	TariffTTL      = 12 * time.Hour
	ConsumptionTTL = 30 * time.Minute
)

type cacheEntry struct {
	data     any
	storedAt time.Time
	ttl      time.Duration
}

// RangeCache is an in-memory key/value store with per-entry expiry and
// window-derived keys. It is safe for concurrent use by in-flight fetch
// tasks; construct one per process and inject it where needed.
//
// GetRange/SetRange key on the exact (from, to) boundary strings, so an
// entry for [a, c) never serves a later query for [a, b). Known limitation:
// adding interval subsumption would change observed staleness behaviour.
type RangeCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// NewRangeCache creates an empty cache using the wall clock for expiry.
func NewRangeCache() *RangeCache {
	return &RangeCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the value stored under key, or false when absent or expired.
// Expired entries are evicted here rather than by a background sweep.
func (c *RangeCache) Get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) > entry.ttl {
		c.Remove(key)
		return nil, false
	}
	return entry.data, true
}

// Set stores value under key. The caller keeps no right to mutate value
// afterwards; cached results are shared across fetch tasks.
func (c *RangeCache) Set(key string, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{data: value, storedAt: c.now(), ttl: ttl}
	c.mu.Unlock()
}

// GetRange looks up the entry for base over the exact [from, to) window.
func (c *RangeCache) GetRange(base string, from, to time.Time) (any, bool) {
	return c.Get(rangeKey(base, from, to))
}

// SetRange stores value for base over the exact [from, to) window.
func (c *RangeCache) SetRange(base string, from, to time.Time, value any, ttl time.Duration) {
	c.Set(rangeKey(base, from, to), value, ttl)
}

// Remove deletes a single entry.
func (c *RangeCache) Remove(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *RangeCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// Len reports the number of entries, expired or not.
func (c *RangeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func rangeKey(base string, from, to time.Time) string {
	return fmt.Sprintf("%s_%s_%s", base, formatBoundary(from), formatBoundary(to))
}
