package rules

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// expressionCostLimit bounds the work a single guard evaluation may do
const expressionCostLimit = 1000000

// ExpressionGuards compiles and evaluates optional CEL rule guards.
// Programs are cached by expression text, so rules sharing a guard share a
// program and duplicate rule IDs cannot collide.
type ExpressionGuards struct {
	env      *cel.Env
	programs map[string]cel.Program
	mu       sync.RWMutex
}

// NewExpressionGuards creates the CEL environment guards are compiled against.
// Guards see `payload` (the event payload) and `trigger` (the event type).
func NewExpressionGuards() (*ExpressionGuards, error) {
	env, err := cel.NewEnv(
		cel.Variable("payload", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("trigger", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &ExpressionGuards{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// Compile type-checks expression and caches its program
func (g *ExpressionGuards) Compile(expression string) error {
	g.mu.RLock()
	_, exists := g.programs[expression]
	g.mu.RUnlock()
	if exists {
		return nil
	}

	ast, issues := g.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("compile error: %w", issues.Err())
	}

	prog, err := g.env.Program(ast,
		cel.EvalOptions(cel.OptTrackState),
		cel.CostLimit(expressionCostLimit),
	)
	if err != nil {
		return fmt.Errorf("program creation error: %w", err)
	}

	g.mu.Lock()
	g.programs[expression] = prog
	g.mu.Unlock()

	return nil
}

// Allows evaluates expression against an event.
// An empty expression always allows. Errors and non-boolean results deny.
func (g *ExpressionGuards) Allows(expression string, trigger Trigger, payload Payload) (bool, error) {
	if expression == "" {
		return true, nil
	}

	g.mu.RLock()
	prog, exists := g.programs[expression]
	g.mu.RUnlock()

	if !exists {
		if err := g.Compile(expression); err != nil {
			return false, err
		}
		g.mu.RLock()
		prog = g.programs[expression]
		g.mu.RUnlock()
	}

	if payload == nil {
		payload = Payload{}
	}

	out, _, err := prog.Eval(map[string]any{
		"payload": map[string]any(payload),
		"trigger": string(trigger),
	})
	if err != nil {
		return false, err
	}

	matched, ok := out.Value().(bool)
	return ok && matched, nil
}
