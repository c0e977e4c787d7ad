package rules

import "time"

// Trigger is the event type a rule subscribes to
type Trigger string

const (
	TriggerOrderCreated       Trigger = "order_created"
	TriggerOrderStatusChanged Trigger = "order_status_changed"
	TriggerScheduled          Trigger = "scheduled"
)

// Valid reports whether t is one of the known triggers
func (t Trigger) Valid() bool {
	switch t {
	case TriggerOrderCreated, TriggerOrderStatusChanged, TriggerScheduled:
		return true
	}
	return false
}

// ActionType identifies the side effect an action performs
type ActionType string

const (
	ActionSendEmail          ActionType = "send_email"
	ActionCreateNotification ActionType = "create_notification"
	ActionUpdateOrder        ActionType = "update_order"
	ActionUpdateStock        ActionType = "update_stock"
	ActionApplyDiscount      ActionType = "apply_discount"
	ActionAssignToUser       ActionType = "assign_to_user"
	ActionCreateTask         ActionType = "create_task"
)

// Payload carries the business data of an event
type Payload map[string]any

// ActionSpec declares one side effect of a rule
type ActionSpec struct {
	Type       ActionType     `json:"type" yaml:"type"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Rule couples a trigger, its conditions and an ordered list of actions
type Rule struct {
	ID         string       `json:"id" yaml:"id,omitempty"`
	Name       string       `json:"name" yaml:"name"`
	Trigger    Trigger      `json:"trigger" yaml:"trigger"`
	Conditions Conditions   `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Expression string       `json:"expression,omitempty" yaml:"expression,omitempty"` // optional CEL guard
	Actions    []ActionSpec `json:"actions" yaml:"actions"`
	Enabled    bool         `json:"enabled" yaml:"enabled"`
	Schedule   string       `json:"schedule,omitempty" yaml:"schedule,omitempty"`
	CreatedAt  time.Time    `json:"created_at" yaml:"-"`
	UpdatedAt  time.Time    `json:"updated_at" yaml:"-"`
}

// clone returns a copy that shares no mutable state with r
func (r *Rule) clone() *Rule {
	c := *r
	if r.Conditions != nil {
		c.Conditions = make(Conditions, len(r.Conditions))
		for k, m := range r.Conditions {
			c.Conditions[k] = m
		}
	}
	if r.Actions != nil {
		c.Actions = make([]ActionSpec, len(r.Actions))
		copy(c.Actions, r.Actions)
	}
	return &c
}

// ActionStatus is the outcome of a single action
type ActionStatus string

const (
	ActionSucceeded ActionStatus = "succeeded"
	ActionFailed    ActionStatus = "failed"
	ActionSkipped   ActionStatus = "skipped"
)

// ActionResult records what happened to one action of a fired rule
type ActionResult struct {
	Type   ActionType   `json:"type"`
	Status ActionStatus `json:"status"`
	Error  string       `json:"error,omitempty"`
}

// RuleOutcome lists the action results of one fired rule, in execution order
type RuleOutcome struct {
	RuleID   string         `json:"rule_id"`
	RuleName string         `json:"rule_name"`
	Actions  []ActionResult `json:"actions"`
}

// ProcessResult summarizes one ProcessEvent call
type ProcessResult struct {
	Success       bool          `json:"success"`
	RulesExecuted int           `json:"rules_executed"`
	Error         string        `json:"error,omitempty"`
	Outcomes      []RuleOutcome `json:"outcomes,omitempty"`
}
