package rules

import "time"

// RulesCache holds the store's rules indexed by trigger so ProcessEvent does
// not rescan the whole store on every event
type RulesCache interface {
	// Get returns the cached rules for a trigger in store order.
	// ok is false on a miss or when the cache has expired.
	Get(trigger Trigger) (rules []*Rule, ok bool)

	// Set replaces the cached contents with rules
	Set(rules []*Rule)

	// Generation changes on every Invalidate
	Generation() uint64

	// SetIfGeneration stores rules only if no Invalidate happened since
	// generation was read. It reports whether the rules were stored.
	SetIfGeneration(generation uint64, rules []*Rule) bool

	// Invalidate clears the cache, forcing a refresh on next Get
	Invalidate()

	// IsValid returns true if cache has valid data
	IsValid() bool
}

// CacheConfig holds configuration for cache behavior
type CacheConfig struct {
	// TTL is the time-to-live for cached entries
	// Set to 0 for no expiration (manual invalidation only)
	TTL time.Duration
}

// DefaultCacheConfig invalidates only on rule mutations
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 0}
}
