package rules

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RuleStore manages the ordered collection of rule definitions
type RuleStore interface {
	// Add appends a rule, generating an ID when empty
	Add(rule *Rule) *Rule

	// Remove deletes every rule with the given ID
	Remove(id string)

	// Toggle sets Enabled on every rule with the given ID
	Toggle(id string, enabled bool)

	// List returns all rules in insertion order
	List() ([]*Rule, error)

	// Get returns the first rule with the given ID
	Get(id string) (*Rule, bool)
}

// InMemoryRuleStore implements RuleStore using an ordered slice.
// Rules do not survive a process restart.
type InMemoryRuleStore struct {
	rules []*Rule
	mu    sync.RWMutex
}

// NewInMemoryRuleStore creates a new in-memory rule store
func NewInMemoryRuleStore() *InMemoryRuleStore {
	return &InMemoryRuleStore{}
}

// Add appends a copy of rule to the store and returns the stored copy.
// Explicit duplicate IDs are accepted.
func (s *InMemoryRuleStore) Add(rule *Rule) *Rule {
	stored := rule.clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.mu.Lock()
	s.rules = append(s.rules, stored)
	s.mu.Unlock()

	return stored.clone()
}

// Remove deletes all rules whose ID matches; no-op when none do
func (s *InMemoryRuleStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.rules[:0]
	for _, r := range s.rules {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	// Clear the tail so removed rules can be collected
	for i := len(kept); i < len(s.rules); i++ {
		s.rules[i] = nil
	}
	s.rules = kept
}

// Toggle updates the enabled flag of all rules whose ID matches
func (s *InMemoryRuleStore) Toggle(id string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for _, r := range s.rules {
		if r.ID == id {
			r.Enabled = enabled
			r.UpdatedAt = now
		}
	}
}

// List returns a snapshot of all rules in insertion order
func (s *InMemoryRuleStore) List() ([]*Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Rule, len(s.rules))
	for i, r := range s.rules {
		out[i] = r.clone()
	}
	return out, nil
}

// Get returns a copy of the first rule with the given ID
func (s *InMemoryRuleStore) Get(id string) (*Rule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.rules {
		if r.ID == id {
			return r.clone(), true
		}
	}
	return nil, false
}
