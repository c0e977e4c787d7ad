package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// orderFieldValue checks that field may be written and coerces value to the column type
func orderFieldValue(field string, value any) (any, error) {
	if !updatableOrderFields[field] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	if numericOrderFields[field] {
		f, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("order field %s expects a number, got %T", field, value)
		}
		return f, nil
	}

	switch v := value.(type) {
	case nil:
		return nil, fmt.Errorf("order field %s cannot be null", field)
	case string:
		return v, nil
	default:
		return fmt.Sprint(v), nil
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
