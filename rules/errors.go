package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineConstruction is returned when a required collaborator is missing at start-up
	ErrEngineConstruction = errors.New("engine construction failed")

	// ErrUnsupportedAction is returned by dispatchers for action types they do not know
	ErrUnsupportedAction = errors.New("unsupported action type")

	// ErrRuleNotFound is returned by lookups on an unknown rule ID
	ErrRuleNotFound = errors.New("rule not found")
)

// ActionError wraps a failure of a single action with the rule that declared it
type ActionError struct {
	RuleID string
	Action ActionType
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %s of rule %s failed: %v", e.Action, e.RuleID, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}
