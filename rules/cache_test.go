package rules

import (
	"testing"
	"time"
)

// TestInMemoryRulesCacheIndexesByTrigger verifies Set groups rules per trigger in order
func TestInMemoryRulesCacheIndexesByTrigger(t *testing.T) {
	cache := NewInMemoryRulesCache(DefaultCacheConfig())

	if _, ok := cache.Get(TriggerOrderCreated); ok {
		t.Fatal("empty cache should miss")
	}

	cache.Set([]*Rule{
		{ID: "a", Trigger: TriggerOrderCreated},
		{ID: "b", Trigger: TriggerScheduled},
		{ID: "c", Trigger: TriggerOrderCreated},
	})

	created, ok := cache.Get(TriggerOrderCreated)
	if !ok {
		t.Fatal("cache should hit after Set()")
	}
	if len(created) != 2 || created[0].ID != "a" || created[1].ID != "c" {
		t.Errorf("order_created rules = %v, want [a c]", created)
	}

	changed, ok := cache.Get(TriggerOrderStatusChanged)
	if !ok || len(changed) != 0 {
		t.Errorf("trigger without rules should be a hit with no rules, got %v, %v", changed, ok)
	}
}

// TestInMemoryRulesCacheInvalidate verifies Invalidate forces a miss
func TestInMemoryRulesCacheInvalidate(t *testing.T) {
	cache := NewInMemoryRulesCache(DefaultCacheConfig())
	cache.Set([]*Rule{{ID: "a", Trigger: TriggerOrderCreated}})

	if !cache.IsValid() {
		t.Fatal("cache should be valid after Set()")
	}

	cache.Invalidate()

	if cache.IsValid() {
		t.Error("cache should be invalid after Invalidate()")
	}
	if _, ok := cache.Get(TriggerOrderCreated); ok {
		t.Error("Get() should miss after Invalidate()")
	}
}

// TestInMemoryRulesCacheTTL verifies entries expire after the configured TTL
func TestInMemoryRulesCacheTTL(t *testing.T) {
	cache := NewInMemoryRulesCache(CacheConfig{TTL: 10 * time.Millisecond})
	cache.Set([]*Rule{{ID: "a", Trigger: TriggerOrderCreated}})

	if !cache.IsValid() {
		t.Fatal("cache should be valid immediately after Set()")
	}

	time.Sleep(20 * time.Millisecond)

	if cache.IsValid() {
		t.Error("cache should expire after TTL")
	}
}

// TestInMemoryRulesCacheGetCopiesSlice verifies callers cannot reorder the cached index
func TestInMemoryRulesCacheGetCopiesSlice(t *testing.T) {
	cache := NewInMemoryRulesCache(DefaultCacheConfig())
	cache.Set([]*Rule{
		{ID: "a", Trigger: TriggerOrderCreated},
		{ID: "b", Trigger: TriggerOrderCreated},
	})

	got, _ := cache.Get(TriggerOrderCreated)
	got[0], got[1] = got[1], got[0]

	again, _ := cache.Get(TriggerOrderCreated)
	if again[0].ID != "a" {
		t.Error("cached order changed through a returned slice")
	}
}

// TestInMemoryRulesCacheSetIfGeneration verifies a read taken before Invalidate is not cached
func TestInMemoryRulesCacheSetIfGeneration(t *testing.T) {
	cache := NewInMemoryRulesCache(DefaultCacheConfig())

	generation := cache.Generation()
	cache.Invalidate()
	if cache.SetIfGeneration(generation, []*Rule{{ID: "stale", Trigger: TriggerOrderCreated}}) {
		t.Error("SetIfGeneration() stored rules read before Invalidate()")
	}
	if cache.IsValid() {
		t.Fatal("cache should stay invalid after a rejected SetIfGeneration()")
	}

	if !cache.SetIfGeneration(cache.Generation(), []*Rule{{ID: "fresh", Trigger: TriggerOrderCreated}}) {
		t.Fatal("SetIfGeneration() with the current generation should store")
	}
	got, ok := cache.Get(TriggerOrderCreated)
	if !ok || len(got) != 1 || got[0].ID != "fresh" {
		t.Errorf("Get() = %v, %v, want [fresh]", got, ok)
	}
}
