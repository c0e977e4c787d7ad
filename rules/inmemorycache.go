package rules

import (
	"sync"
	"time"
)

// InMemoryRulesCache is a simple in-memory implementation of RulesCache
// Thread-safe for concurrent access
type InMemoryRulesCache struct {
	byTrigger map[Trigger][]*Rule
	cachedAt   time.Time
	config     CacheConfig
	mu         sync.RWMutex
	isValid    bool
	generation uint64
}

// NewInMemoryRulesCache creates a new in-memory rules cache
func NewInMemoryRulesCache(config CacheConfig) *InMemoryRulesCache {
	return &InMemoryRulesCache{config: config}
}

// Get returns the rules subscribed to trigger.
// A valid cache with no rules for trigger is a hit with an empty slice.
func (c *InMemoryRulesCache) Get(trigger Trigger) ([]*Rule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.validLocked() {
		return nil, false
	}

	cached := c.byTrigger[trigger]
	out := make([]*Rule, len(cached))
	copy(out, cached)
	return out, true
}

// Set indexes rules by trigger, keeping their relative order
func (c *InMemoryRulesCache) Set(rules []*Rule) {
	index := indexByTrigger(rules)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeLocked(index)
}

// Generation returns the invalidation counter
func (c *InMemoryRulesCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// SetIfGeneration drops rules read before the latest Invalidate
func (c *InMemoryRulesCache) SetIfGeneration(generation uint64, rules []*Rule) bool {
	index := indexByTrigger(rules)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		return false
	}
	c.storeLocked(index)
	return true
}

// Invalidate clears the cache
func (c *InMemoryRulesCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.isValid = false
	c.byTrigger = nil
}

func (c *InMemoryRulesCache) storeLocked(index map[Trigger][]*Rule) {
	c.byTrigger = index
	c.cachedAt = time.Now()
	c.isValid = true
}

func indexByTrigger(rules []*Rule) map[Trigger][]*Rule {
	index := make(map[Trigger][]*Rule)
	for _, r := range rules {
		index[r.Trigger] = append(index[r.Trigger], r)
	}
	return index
}

// IsValid returns true if cache contains valid data
func (c *InMemoryRulesCache) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validLocked()
}

func (c *InMemoryRulesCache) validLocked() bool {
	if !c.isValid {
		return false
	}
	if c.config.TTL > 0 {
		return time.Since(c.cachedAt) <= c.config.TTL
	}
	return true
}
