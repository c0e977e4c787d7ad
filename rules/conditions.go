package rules

import (
	"encoding/json"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// Operator tags the comparison a Matcher performs
type Operator string

const (
	OpEquals Operator = "$eq"
	OpGte    Operator = "$gte"
	OpLte    Operator = "$lte"
	OpGt     Operator = "$gt"
	OpLt     Operator = "$lt"
	OpIn     Operator = "$in"
)

// operatorPriority is the order in which operator keys are looked up when
// decoding a matcher object. Only the first one present is honored.
var operatorPriority = []Operator{OpGte, OpLte, OpGt, OpLt, OpIn}

// Matcher is a single comparison against one payload field
type Matcher struct {
	Op     Operator
	Value  any
	Values []any // only for OpIn
}

func Equals(v any) Matcher { return Matcher{Op: OpEquals, Value: v} }
func Gte(v any) Matcher    { return Matcher{Op: OpGte, Value: v} }
func Lte(v any) Matcher    { return Matcher{Op: OpLte, Value: v} }
func Gt(v any) Matcher     { return Matcher{Op: OpGt, Value: v} }
func Lt(v any) Matcher     { return Matcher{Op: OpLt, Value: v} }
func In(vs ...any) Matcher { return Matcher{Op: OpIn, Values: vs} }

// Conditions maps payload field names to matchers. All must hold.
type Conditions map[string]Matcher

// Evaluate reports whether every condition holds for payload.
// It never panics; incompatible comparisons are simply false.
func Evaluate(conditions Conditions, payload Payload) bool {
	for key, m := range conditions {
		if !m.Match(payload[key]) {
			return false
		}
	}
	return true
}

// Match applies the matcher to a single payload value
func (m Matcher) Match(actual any) bool {
	if actual == nil {
		return false
	}

	switch m.Op {
	case OpEquals:
		return valuesEqual(actual, m.Value)
	case OpGte, OpLte, OpGt, OpLt:
		a, ok := toNumber(actual)
		if !ok {
			return false
		}
		b, ok := toNumber(m.Value)
		if !ok {
			return false
		}
		switch m.Op {
		case OpGte:
			return a >= b
		case OpLte:
			return a <= b
		case OpGt:
			return a > b
		default:
			return a < b
		}
	case OpIn:
		for _, v := range m.Values {
			if valuesEqual(actual, v) {
				return true
			}
		}
	}
	return false
}

// valuesEqual is strict equality with all numeric kinds treated as one type
func valuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	if an, ok := toNumber(a); ok {
		bn, ok := toNumber(b)
		return ok && an == bn
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ToNumber exposes the numeric coercion used by the evaluator to action code
func ToNumber(v any) (float64, bool) {
	return toNumber(v)
}

// matcherFromValue converts the wire form (scalar or operator object) to a Matcher
func matcherFromValue(raw any) (Matcher, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		if _, isList := raw.([]any); isList {
			return Matcher{}, fmt.Errorf("list is not a valid condition, use {\"$in\": [...]}")
		}
		return Equals(raw), nil
	}

	for _, op := range operatorPriority {
		v, present := obj[string(op)]
		if !present {
			continue
		}
		if op == OpIn {
			list, ok := v.([]any)
			if !ok {
				return Matcher{}, fmt.Errorf("%s expects a list, got %T", op, v)
			}
			return In(list...), nil
		}
		return Matcher{Op: op, Value: v}, nil
	}
	return Matcher{}, fmt.Errorf("condition object has no supported operator (want one of $gte, $lte, $gt, $lt, $in)")
}

// wireValue is the inverse of matcherFromValue
func (m Matcher) wireValue() any {
	switch m.Op {
	case OpEquals:
		return m.Value
	case OpIn:
		return map[string]any{string(OpIn): m.Values}
	default:
		return map[string]any{string(m.Op): m.Value}
	}
}

func (m Matcher) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.wireValue())
}

func (m *Matcher) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := matcherFromValue(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m Matcher) MarshalYAML() (any, error) {
	return m.wireValue(), nil
}

func (m *Matcher) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := matcherFromValue(normalizeYAML(raw))
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*m = parsed
	return nil
}

// normalizeYAML turns map[any]any style values into map[string]any
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalizeYAML(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalizeYAML(val)
		}
		return out
	}
	return v
}
