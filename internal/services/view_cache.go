package services

import (
	"sync"
	"time"

	"autoassist/internal/models"
)

// ViewCache is the poller's local read-through cache, keyed by request id.
// It only exists to keep a view populated between poll ticks; it is never
// authoritative. Every successful tick replaces it wholesale.
type ViewCache struct {
	mu      sync.RWMutex
	entries map[string]viewEntry
	order   []string
}

type viewEntry struct {
	value           *models.BreakdownRequest
	lastRefreshedAt time.Time
}

func NewViewCache() *ViewCache {
	return &ViewCache{
		entries: make(map[string]viewEntry),
	}
}

// ReplaceAll swaps the entire cached view for the freshly fetched one.
// Field-by-field merging is deliberately not done.
func (c *ViewCache) ReplaceAll(requests []*models.BreakdownRequest, refreshedAt time.Time) {
	entries := make(map[string]viewEntry, len(requests))
	order := make([]string, 0, len(requests))
	for _, request := range requests {
		id := request.ID.Hex()
		entries[id] = viewEntry{value: request, lastRefreshedAt: refreshedAt}
		order = append(order, id)
	}

	c.mu.Lock()
	c.entries = entries
	c.order = order
	c.mu.Unlock()
}

func (c *ViewCache) Get(id string) (*models.BreakdownRequest, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[id]
	if !ok {
		return nil, time.Time{}, false
	}
	return entry.value, entry.lastRefreshedAt, true
}

// Snapshot returns the cached view in fetch order.
func (c *ViewCache) Snapshot() []*models.BreakdownRequest {
	c.mu.RLock()
	defer c.mu.RUnlock()

	requests := make([]*models.BreakdownRequest, 0, len(c.order))
	for _, id := range c.order {
		requests = append(requests, c.entries[id].value)
	}
	return requests
}

func (c *ViewCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
