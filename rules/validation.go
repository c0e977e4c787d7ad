package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/robfig/cron/v3"
)

const (
	maxIdentifierLength = 100
	maxConditions       = 50
	maxActions          = 50
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// ValidateRule checks a rule definition before it is added to an engine.
// Unknown action types pass: the dispatcher skips them at run time.
func ValidateRule(rule *Rule) error {
	if rule == nil {
		return fmt.Errorf("rule cannot be nil")
	}

	if strings.TrimSpace(rule.Name) == "" {
		return fmt.Errorf("rule name cannot be empty")
	}

	if len(rule.ID) > maxIdentifierLength {
		return fmt.Errorf("rule ID length %d exceeds maximum of %d characters", len(rule.ID), maxIdentifierLength)
	}

	if !rule.Trigger.Valid() {
		return fmt.Errorf("invalid trigger %q (must be one of: %s, %s, %s)",
			rule.Trigger, TriggerOrderCreated, TriggerOrderStatusChanged, TriggerScheduled)
	}

	if len(rule.Conditions) > maxConditions {
		return fmt.Errorf("rule contains %d conditions, maximum allowed is %d", len(rule.Conditions), maxConditions)
	}

	for field := range rule.Conditions {
		if err := validateIdentifier(field); err != nil {
			return fmt.Errorf("invalid condition field %q: %w", field, err)
		}
	}

	if len(rule.Actions) > maxActions {
		return fmt.Errorf("rule contains %d actions, maximum allowed is %d", len(rule.Actions), maxActions)
	}

	for i, action := range rule.Actions {
		if strings.TrimSpace(string(action.Type)) == "" {
			return fmt.Errorf("action %d has empty type", i)
		}
	}

	if rule.Schedule != "" {
		if _, err := cron.ParseStandard(rule.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", rule.Schedule, err)
		}
	}

	return nil
}

// validateIdentifier checks a payload field name used as a condition key
func validateIdentifier(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > maxIdentifierLength {
		return fmt.Errorf("identifier length %d exceeds maximum of %d characters", len(name), maxIdentifierLength)
	}
	if !validIdentifier.MatchString(name) {
		return fmt.Errorf("must match pattern ^[a-zA-Z_][a-zA-Z0-9_]*$ (start with letter or underscore, followed by letters, digits, or underscores)")
	}
	return nil
}
