package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/internal/logger"
)

// Dispatcher executes a single declared action of a fired rule
type Dispatcher interface {
	Dispatch(ctx context.Context, rule *Rule, action ActionSpec, payload Payload) error
}

// ActionSupporter is implemented by dispatchers that can tell up front which
// action types they run
type ActionSupporter interface {
	SupportsAction(action ActionType) bool
}

// Recorder receives engine telemetry. Implemented by internal/metrics.
type Recorder interface {
	EventProcessed(trigger Trigger, success bool, rulesExecuted int, elapsed time.Duration)
	ActionExecuted(action ActionType, status ActionStatus)
}

type nopRecorder struct{}

func (nopRecorder) EventProcessed(Trigger, bool, int, time.Duration) {}
func (nopRecorder) ActionExecuted(ActionType, ActionStatus)          {}

// Engine matches events against stored rules and runs the actions of every
// matching rule. Rules are evaluated in store order; actions in declared order.
type Engine struct {
	store        RuleStore
	dispatcher   Dispatcher
	guards       *ExpressionGuards
	cache        RulesCache
	recorder     Recorder
	seedDefaults bool
}

// EngineOption configures optional engine behavior
type EngineOption func(*Engine)

// WithDefaultRules adds the built-in storefront policies at construction
func WithDefaultRules() EngineOption {
	return func(en *Engine) {
		en.seedDefaults = true
	}
}

// WithRecorder reports engine activity to r
func WithRecorder(r Recorder) EngineOption {
	return func(en *Engine) {
		if r != nil {
			en.recorder = r
		}
	}
}

// WithCacheConfig replaces the default candidate cache configuration
func WithCacheConfig(cfg CacheConfig) EngineOption {
	return func(en *Engine) {
		en.cache = NewInMemoryRulesCache(cfg)
	}
}

// NewEngine creates a rule engine over an injected store and dispatcher.
// Expression guards of rules already in the store are compiled up front.
func NewEngine(store RuleStore, dispatcher Dispatcher, opts ...EngineOption) (*Engine, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: rule store is required", ErrEngineConstruction)
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("%w: action dispatcher is required", ErrEngineConstruction)
	}

	guards, err := NewExpressionGuards()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEngineConstruction, err)
	}

	en := &Engine{
		store:      store,
		dispatcher: dispatcher,
		guards:     guards,
		cache:      NewInMemoryRulesCache(DefaultCacheConfig()),
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(en)
	}

	if err := en.compileAll(); err != nil {
		return nil, fmt.Errorf("failed to compile rules: %w", err)
	}

	if en.seedDefaults {
		for _, rule := range DefaultRules() {
			if _, err := en.AddRule(rule); err != nil {
				return nil, fmt.Errorf("failed to add default rule %s: %w", rule.ID, err)
			}
		}
	}

	return en, nil
}

// compileAll compiles the guards of every stored rule and warms the cache
func (en *Engine) compileAll() error {
	generation := en.cache.Generation()
	all, err := en.store.List()
	if err != nil {
		return err
	}

	for _, rule := range all {
		if rule.Expression == "" {
			continue
		}
		if err := en.guards.Compile(rule.Expression); err != nil {
			return fmt.Errorf("failed to compile rule %s: %w", rule.ID, err)
		}
	}

	en.cache.SetIfGeneration(generation, all)
	return nil
}

// ProcessEvent runs every enabled rule subscribed to trigger whose conditions
// hold for payload. It never panics and never returns an error: failures
// outside individual actions are reported through Success and Error.
func (en *Engine) ProcessEvent(ctx context.Context, trigger Trigger, payload Payload) (result *ProcessResult) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("rule engine panicked while processing event", "trigger", trigger, "panic", r)
			result = &ProcessResult{Success: false, Error: fmt.Sprintf("panic: %v", r)}
		}
		en.recorder.EventProcessed(trigger, result.Success, result.RulesExecuted, time.Since(start))
	}()

	matching, err := en.MatchingRules(trigger, payload)
	if err != nil {
		logger.Error("failed to select rules for event", "trigger", trigger, "error", err)
		return &ProcessResult{Success: false, Error: err.Error()}
	}

	result = &ProcessResult{
		Success:       true,
		RulesExecuted: len(matching),
		Outcomes:      make([]RuleOutcome, 0, len(matching)),
	}

	for _, rule := range matching {
		outcome := RuleOutcome{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Actions:  make([]ActionResult, 0, len(rule.Actions)),
		}
		for _, action := range rule.Actions {
			outcome.Actions = append(outcome.Actions, en.runAction(ctx, rule, action, payload))
		}
		result.Outcomes = append(result.Outcomes, outcome)

		logger.Debug("rule executed", "rule_id", rule.ID, "trigger", trigger, "actions", len(rule.Actions))
	}

	return result
}

// MatchingRules returns the rules that would fire for an event, in store order
func (en *Engine) MatchingRules(trigger Trigger, payload Payload) ([]*Rule, error) {
	candidates, err := en.candidates(trigger)
	if err != nil {
		return nil, err
	}

	var matching []*Rule
	for _, rule := range candidates {
		if !rule.Enabled || rule.Trigger != trigger {
			continue
		}
		if !Evaluate(rule.Conditions, payload) {
			continue
		}
		allowed, err := en.guards.Allows(rule.Expression, trigger, payload)
		if err != nil {
			logger.Debug("rule expression did not evaluate", "rule_id", rule.ID, "error", err)
		}
		if !allowed {
			continue
		}
		matching = append(matching, rule)
	}
	return matching, nil
}

// candidates returns the rules subscribed to trigger, from cache when possible
func (en *Engine) candidates(trigger Trigger) ([]*Rule, error) {
	if cached, ok := en.cache.Get(trigger); ok {
		return cached, nil
	}

	// a mutation during List bumps the generation and the stale read is not cached
	generation := en.cache.Generation()
	all, err := en.store.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	en.cache.SetIfGeneration(generation, all)

	var subscribed []*Rule
	for _, rule := range all {
		if rule.Trigger == trigger {
			subscribed = append(subscribed, rule)
		}
	}
	return subscribed, nil
}

// runAction dispatches one action and converts any failure, including a
// panic, into a recorded result
func (en *Engine) runAction(ctx context.Context, rule *Rule, action ActionSpec, payload Payload) (res ActionResult) {
	res = ActionResult{Type: action.Type, Status: ActionSucceeded}

	defer func() {
		if r := recover(); r != nil {
			actionErr := &ActionError{RuleID: rule.ID, Action: action.Type, Err: fmt.Errorf("panic: %v", r)}
			logger.Error("rule action panicked", "rule_id", rule.ID, "rule_name", rule.Name, "action", action.Type, "error", actionErr)
			res.Status = ActionFailed
			res.Error = actionErr.Error()
		}
		en.recorder.ActionExecuted(action.Type, res.Status)
	}()

	err := en.dispatcher.Dispatch(ctx, rule, action, payload)
	switch {
	case err == nil:
	case errors.Is(err, ErrUnsupportedAction):
		res.Status = ActionSkipped
		res.Error = err.Error()
	default:
		actionErr := &ActionError{RuleID: rule.ID, Action: action.Type, Err: err}
		logger.Error("rule action failed", "rule_id", rule.ID, "rule_name", rule.Name, "action", action.Type, "error", err)
		res.Status = ActionFailed
		res.Error = actionErr.Error()
	}
	return res
}

// AddRule validates rule, compiles its guard and appends it to the store
func (en *Engine) AddRule(rule *Rule) (*Rule, error) {
	if err := ValidateRule(rule); err != nil {
		return nil, fmt.Errorf("rule validation failed: %w", err)
	}

	if rule.Expression != "" {
		if err := en.guards.Compile(rule.Expression); err != nil {
			return nil, fmt.Errorf("rule validation failed: %w", err)
		}
	}

	for _, action := range en.UnsupportedActions(rule) {
		logger.Warn("rule declares an action the dispatcher cannot run; it will be skipped",
			"rule_id", rule.ID, "rule_name", rule.Name, "action", action)
	}

	stored := en.store.Add(rule)
	en.cache.Invalidate()

	logger.Info("rule added", "rule_id", stored.ID, "trigger", stored.Trigger, "enabled", stored.Enabled)
	return stored, nil
}

// UnsupportedActions lists the action types of rule the dispatcher reports it
// cannot run, in declared order. Empty when the dispatcher is not an ActionSupporter.
func (en *Engine) UnsupportedActions(rule *Rule) []ActionType {
	supporter, ok := en.dispatcher.(ActionSupporter)
	if !ok {
		return nil
	}
	var unsupported []ActionType
	for _, action := range rule.Actions {
		if !supporter.SupportsAction(action.Type) {
			unsupported = append(unsupported, action.Type)
		}
	}
	return unsupported
}

// RemoveRule deletes every rule with the given ID
func (en *Engine) RemoveRule(id string) {
	en.store.Remove(id)
	en.cache.Invalidate()
	logger.Info("rule removed", "rule_id", id)
}

// ToggleRule enables or disables every rule with the given ID without deleting it
func (en *Engine) ToggleRule(id string, enabled bool) {
	en.store.Toggle(id, enabled)
	en.cache.Invalidate()
	logger.Info("rule toggled", "rule_id", id, "enabled", enabled)
}

// GetRules returns all rules in store order
func (en *Engine) GetRules() ([]*Rule, error) {
	return en.store.List()
}

// GetRule returns the first rule with the given ID
func (en *Engine) GetRule(id string) (*Rule, bool) {
	return en.store.Get(id)
}
