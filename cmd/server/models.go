package main

import (
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
)

// API request and response models

// EventRequest is the body of POST /api/v1/events
type EventRequest struct {
	Type    rules.Trigger `json:"type" example:"order_created" binding:"required"`
	Payload rules.Payload `json:"payload"`
} // @name EventRequest

// CreateRuleRequest is the body of POST /api/v1/rules.
// Enabled defaults to true when omitted.
type CreateRuleRequest struct {
	ID         string             `json:"id,omitempty" example:"vip-free-shipping"`
	Name       string             `json:"name" example:"VIP free shipping" binding:"required"`
	Trigger    rules.Trigger      `json:"trigger" example:"order_created" binding:"required"`
	Conditions rules.Conditions   `json:"conditions,omitempty"`
	Expression string             `json:"expression,omitempty" example:"payload.total > 100.0"`
	Actions    []rules.ActionSpec `json:"actions" binding:"required"`
	Enabled    *bool              `json:"enabled,omitempty" example:"true"`
	Schedule   string             `json:"schedule,omitempty" example:"@every 1h"`
} // @name CreateRuleRequest

// Rule converts the request to an engine rule
func (req CreateRuleRequest) Rule() *rules.Rule {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return &rules.Rule{
		ID:         req.ID,
		Name:       req.Name,
		Trigger:    req.Trigger,
		Conditions: req.Conditions,
		Expression: req.Expression,
		Actions:    req.Actions,
		Enabled:    enabled,
		Schedule:   req.Schedule,
	}
}

// SetEnabledRequest is the body of PUT /api/v1/rules/{ruleId}/enabled
type SetEnabledRequest struct {
	Enabled *bool `json:"enabled" example:"false" binding:"required"`
} // @name SetEnabledRequest

// RulesListResponse lists rules in evaluation order
type RulesListResponse struct {
	Rules []*rules.Rule `json:"rules"`
} // @name RulesListResponse

// HealthResponse is returned by GET /api/v1/health
type HealthResponse struct {
	Status      string `json:"status" example:"healthy"`
	RulesLoaded int    `json:"rulesLoaded,omitempty" example:"6"`
	Error       string `json:"error,omitempty"`
} // @name HealthResponse

// ErrorResponse is the body of every 4xx/5xx response
type ErrorResponse struct {
	Error   string `json:"error" example:"rule not found"`
	Details string `json:"details,omitempty"`
} // @name ErrorResponse
