// Package cache provides the in-memory table-read cache.
// A single instance is shared by every session; in production this could
// be backed by Redis, but the dashboard's traffic does not warrant it.
package cache

import (
	"sync"
	"time"

	"github.com/jmpinto/eventos-escuteiros/internal/domain"
)

type entry struct {
	records   []domain.Record
	expiresAt time.Time
}

// Tables is a thread-safe cache of full-table reads with a fixed TTL.
// It is advisory only: callers that need strict freshness read through the
// gateway directly.
type Tables struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
}

// New creates a table cache with the given TTL.
func New(ttl time.Duration) *Tables {
	c := &Tables{
		items: make(map[string]entry),
		ttl:   ttl,
	}
	// Background cleanup goroutine
	go c.cleanup()
	return c
}

// Get returns the cached records of a table. Returns false when the table
// has never been read or the entry expired.
func (c *Tables) Get(table string) ([]domain.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[table]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.records, true
}

// Set stores a table read with the configured TTL.
func (c *Tables) Set(table string, records []domain.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[table] = entry{
		records:   records,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Flush drops every entry. Must run after any successful create/update/
// delete so the next Get cannot serve pre-mutation data.
func (c *Tables) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]entry)
}

// cleanup periodically removes expired entries.
func (c *Tables) cleanup() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for k, v := range c.items {
			if now.After(v.expiresAt) {
				delete(c.items, k)
			}
		}
		c.mu.Unlock()
	}
}
