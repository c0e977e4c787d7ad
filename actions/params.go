package actions

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
)

// MissingParamError reports an action parameter the rule did not provide
type MissingParamError struct{ Param string }

func (e *MissingParamError) Error() string {
	return "missing required parameter: " + e.Param
}

// InvalidParamError reports an action parameter with an unusable value
type InvalidParamError struct{ Param, Reason string }

func (e *InvalidParamError) Error() string {
	return "invalid parameter " + e.Param + ": " + e.Reason
}

// MissingFieldError reports an event payload field an action depends on
type MissingFieldError struct{ Field string }

func (e *MissingFieldError) Error() string {
	return "event payload is missing field: " + e.Field
}

func errMissingParam(param string) error { return &MissingParamError{Param: param} }

func errInvalidParam(param, reason string) error {
	return &InvalidParamError{Param: param, Reason: reason}
}

func errMissingField(field string) error { return &MissingFieldError{Field: field} }

// stringParam returns params[key] as a string, or def when absent or blank
func stringParam(params map[string]any, key, def string) string {
	v, ok := params[key]
	if !ok || v == nil {
		return def
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// floatParam returns params[key] as a number, accepting numeric strings
func floatParam(params map[string]any, key string) (float64, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return 0, errMissingParam(key)
	}
	if f, ok := rules.ToNumber(v); ok {
		return f, nil
	}
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return f, nil
		}
	}
	return 0, errInvalidParam(key, fmt.Sprintf("expected a number, got %T", v))
}

// payloadString returns payload[key] when it holds a non-empty string
func payloadString(payload rules.Payload, key string) (string, bool) {
	s, ok := payload[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// orderID returns the order an action applies to
func orderID(payload rules.Payload) (string, error) {
	id, ok := payloadString(payload, "order_id")
	if !ok {
		return "", errMissingField("order_id")
	}
	return id, nil
}

// DiscountAmount computes the discount an apply_discount action grants.
// A "percentage" type takes value percent of total; any other type is a
// fixed amount.
func DiscountAmount(total float64, params map[string]any) (float64, error) {
	value, err := floatParam(params, "value")
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, errInvalidParam("value", "must not be negative")
	}

	if stringParam(params, "type", "") == "percentage" {
		return total * value / 100, nil
	}
	return value, nil
}

// lineItem is a product and quantity taken from payload.items
type lineItem struct {
	productID string
	quantity  int
}

// lineItems decodes payload.items. Each item needs product_id (or id) and a
// positive whole quantity.
func lineItems(payload rules.Payload) ([]lineItem, error) {
	raw, ok := payload["items"]
	if !ok || raw == nil {
		return nil, nil
	}

	var entries []map[string]any
	switch v := raw.(type) {
	case []any:
		for i, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("item %d: expected an object, got %T", i, e)
			}
			entries = append(entries, m)
		}
	case []map[string]any:
		entries = v
	default:
		return nil, fmt.Errorf("items: expected a list, got %T", raw)
	}

	items := make([]lineItem, 0, len(entries))
	for i, e := range entries {
		id := stringParam(e, "product_id", stringParam(e, "id", ""))
		if id == "" {
			return nil, fmt.Errorf("item %d: missing product_id", i)
		}
		qty, ok := rules.ToNumber(e["quantity"])
		switch {
		case !ok || qty <= 0:
			return nil, fmt.Errorf("item %d: %w", i, errInvalidParam("quantity", "must be a positive number"))
		case qty != math.Trunc(qty):
			return nil, fmt.Errorf("item %d: %w", i, errInvalidParam("quantity", "must be a whole number"))
		case qty > math.MaxInt32:
			return nil, fmt.Errorf("item %d: %w", i, errInvalidParam("quantity", "is too large"))
		}
		items = append(items, lineItem{productID: id, quantity: int(qty)})
	}
	return items, nil
}
