package rules

import (
	"sync"
	"testing"
)

// TestExpressionGuardsCompile verifies valid expressions compile and invalid ones fail
func TestExpressionGuardsCompile(t *testing.T) {
	guards, err := NewExpressionGuards()
	if err != nil {
		t.Fatalf("NewExpressionGuards() failed: %v", err)
	}

	testCases := []struct {
		name       string
		expression string
		wantErr    bool
	}{
		{"simple boolean", `true`, false},
		{"payload access", `payload.total > 100.0`, false},
		{"trigger access", `trigger == "order_created"`, false},
		{"membership", `"coupon" in payload`, false},
		{"syntax error", `payload.total >`, true},
		{"unknown variable", `order.total > 1.0`, true},
		{"invalid operator", `payload.total === 1`, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := guards.Compile(tc.expression)
			if (err != nil) != tc.wantErr {
				t.Errorf("Compile(%q) error = %v, wantErr %v", tc.expression, err, tc.wantErr)
			}
		})
	}
}

// TestExpressionGuardsAllows verifies evaluation results, including denials on errors
func TestExpressionGuardsAllows(t *testing.T) {
	guards, _ := NewExpressionGuards()
	payload := Payload{"total": 600.0, "customer_type": "vip", "items": []any{"a", "b"}}

	testCases := []struct {
		name       string
		expression string
		want       bool
		wantErr    bool
	}{
		{"empty allows", ``, true, false},
		{"true", `payload.total > 500.0`, true, false},
		{"false", `payload.total < 500.0`, false, false},
		{"trigger", `trigger == "order_created"`, true, false},
		{"list size", `size(payload.items) == 2`, true, false},
		{"has key", `has(payload.coupon)`, false, false},
		{"missing key errors", `payload.coupon == "X"`, false, true},
		{"non boolean denies", `payload.customer_type`, false, false},
		{"compile error denies", `payload.total >`, false, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := guards.Allows(tc.expression, TriggerOrderCreated, payload)
			if (err != nil) != tc.wantErr {
				t.Errorf("Allows(%q) error = %v, wantErr %v", tc.expression, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("Allows(%q) = %v, want %v", tc.expression, got, tc.want)
			}
		})
	}
}

// TestExpressionGuardsNilPayload verifies a nil payload is treated as empty
func TestExpressionGuardsNilPayload(t *testing.T) {
	guards, _ := NewExpressionGuards()
	allowed, err := guards.Allows(`size(payload) == 0`, TriggerScheduled, nil)
	if err != nil || !allowed {
		t.Errorf("Allows() on nil payload = %v, %v, want true, nil", allowed, err)
	}
}

// TestExpressionGuardsConcurrent verifies compilation and evaluation are thread-safe
func TestExpressionGuardsConcurrent(t *testing.T) {
	guards, _ := NewExpressionGuards()
	expressions := []string{`payload.total > 1.0`, `trigger == "scheduled"`, `has(payload.order_id)`}

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for range 50 {
				expr := expressions[id%len(expressions)]
				if _, err := guards.Allows(expr, TriggerScheduled, Payload{"total": 2.0}); err != nil {
					t.Errorf("Allows(%q) failed: %v", expr, err)
				}
			}
		}(i)
	}
	wg.Wait()
}
