package cache

import (
	"sync"
	"time"

	"github.com/epeers/holdings-dashboard/internal/models"
)

// MemoryCache provides an in-memory L1 cache of worksheet rows keyed by table name.
// Freshness is decided by the caller on read, so one cache serves any window.
type MemoryCache struct {
	tables map[string]tableEntry
	mu     sync.RWMutex
	now    func() time.Time
}

type tableEntry struct {
	records   []models.Record
	fetchedAt time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		tables: make(map[string]tableEntry),
		now:    time.Now,
	}
}

// Get returns the cached rows for a table if they were fetched less than freshness ago.
func (c *MemoryCache) Get(table string, freshness time.Duration) ([]models.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.tables[table]
	if !exists {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= freshness {
		return nil, false
	}
	return entry.records, true
}

// Set caches rows for a table, fetched now
func (c *MemoryCache) Set(table string, records []models.Record) {
	c.SetAt(table, records, c.now())
}

// SetAt caches rows for a table that were fetched from the source at fetchedAt.
func (c *MemoryCache) SetAt(table string, records []models.Record, fetchedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tables[table] = tableEntry{
		records:   records,
		fetchedAt: fetchedAt,
	}
}

// Invalidate removes a table from the cache
func (c *MemoryCache) Invalidate(table string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.tables, table)
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.tables = make(map[string]tableEntry)
	c.mu.Unlock()
}
