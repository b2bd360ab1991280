package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"appscore-lab/internal/domain/models"
)

type windowCount struct {
	window int64
	count  int64
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryCache is an in-process TTL cache for reports. Reports are stored in
// serialized form so callers never share mutable state with the cache.
type MemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]memoryEntry
	locks    map[string]time.Time
	counters map[string]windowCount
	now      func() time.Time
}

// NewMemory creates an empty in-memory cache
func NewMemory() *MemoryCache {
	return &MemoryCache{
		entries:  make(map[string]memoryEntry),
		locks:    make(map[string]time.Time),
		counters: make(map[string]windowCount),
		now:      time.Now,
	}
}

// GetReport returns the cached report, or nil on a miss or expiry
func (c *MemoryCache) GetReport(_ context.Context, contentHash string) (*models.Report, error) {
	c.mu.RLock()
	entry, ok := c.entries[contentHash]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if entry.expired(c.now()) {
		// a writer may have replaced the entry since the read
		c.mu.Lock()
		entry, ok = c.entries[contentHash]
		if ok && entry.expired(c.now()) {
			delete(c.entries, contentHash)
			ok = false
		}
		c.mu.Unlock()
		if !ok {
			return nil, nil
		}
	}

	var report models.Report
	if err := json.Unmarshal(entry.data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &report, nil
}

// SetReport stores a report; a zero ttl never expires
func (c *MemoryCache) SetReport(_ context.Context, contentHash string, report *models.Report, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[contentHash] = entry
	c.mu.Unlock()
	return nil
}

// DeleteReport drops a cached report
func (c *MemoryCache) DeleteReport(_ context.Context, contentHash string) error {
	c.mu.Lock()
	delete(c.entries, contentHash)
	c.mu.Unlock()
	return nil
}

// AcquireLock takes a per-key lock that expires after ttl
func (c *MemoryCache) AcquireLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if until, held := c.locks[key]; held && now.Before(until) {
		return false, nil
	}
	c.locks[key] = now.Add(ttl)
	return true, nil
}

// ReleaseLock releases a per-key lock
func (c *MemoryCache) ReleaseLock(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.locks, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired ones included
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// CheckRateLimit counts requests per key in fixed windows, mirroring the Redis limiter
func (c *MemoryCache) CheckRateLimit(_ context.Context, key string, limit int64, window time.Duration) (bool, int64, time.Time, error) {
	now := c.now()
	current := now.Unix() / int64(window.Seconds())

	c.mu.Lock()
	wc := c.counters[key]
	if wc.window != current {
		wc = windowCount{window: current}
	}
	wc.count++
	c.counters[key] = wc
	c.mu.Unlock()

	remaining := limit - wc.count
	if remaining < 0 {
		remaining = 0
	}
	return wc.count <= limit, remaining, now.Add(window), nil
}
