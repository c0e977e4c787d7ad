package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type dispatchCall struct {
	RuleID string
	Action ActionType
}

// fakeDispatcher records calls and fails or panics on request
type fakeDispatcher struct {
	mu      sync.Mutex
	calls   []dispatchCall
	fail    map[ActionType]error
	panicOn ActionType
}

func (d *fakeDispatcher) Dispatch(_ context.Context, rule *Rule, action ActionSpec, _ Payload) error {
	d.mu.Lock()
	d.calls = append(d.calls, dispatchCall{RuleID: rule.ID, Action: action.Type})
	d.mu.Unlock()

	if d.panicOn != "" && action.Type == d.panicOn {
		panic("dispatcher exploded")
	}
	return d.fail[action.Type]
}

func (d *fakeDispatcher) Calls() []dispatchCall {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]dispatchCall, len(d.calls))
	copy(out, d.calls)
	return out
}

// failingStore returns an error from List
type failingStore struct {
	*InMemoryRuleStore
	fail bool
}

func (s *failingStore) List() ([]*Rule, error) {
	if s.fail {
		return nil, errors.New("store unavailable")
	}
	return s.InMemoryRuleStore.List()
}

type recordedEvent struct {
	Trigger       Trigger
	Success       bool
	RulesExecuted int
}

type fakeRecorder struct {
	mu      sync.Mutex
	events  []recordedEvent
	actions map[ActionStatus]int
}

func (r *fakeRecorder) EventProcessed(trigger Trigger, success bool, rulesExecuted int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{trigger, success, rulesExecuted})
}

func (r *fakeRecorder) ActionExecuted(_ ActionType, status ActionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.actions == nil {
		r.actions = make(map[ActionStatus]int)
	}
	r.actions[status]++
}

func newTestEngine(t *testing.T, opts ...EngineOption) (*Engine, *fakeDispatcher) {
	t.Helper()
	dispatcher := &fakeDispatcher{}
	engine, err := NewEngine(NewInMemoryRuleStore(), dispatcher, opts...)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return engine, dispatcher
}

func mustAdd(t *testing.T, engine *Engine, rule *Rule) *Rule {
	t.Helper()
	stored, err := engine.AddRule(rule)
	if err != nil {
		t.Fatalf("AddRule(%s) failed: %v", rule.Name, err)
	}
	return stored
}

func firedRuleIDs(result *ProcessResult) []string {
	ids := make([]string, len(result.Outcomes))
	for i, o := range result.Outcomes {
		ids[i] = o.RuleID
	}
	return ids
}

// TestNewEngine verifies an engine can be built from a store and dispatcher
func TestNewEngine(t *testing.T) {
	engine, _ := newTestEngine(t)

	rules, err := engine.GetRules()
	if err != nil {
		t.Fatalf("GetRules() failed: %v", err)
	}
	if len(rules) != 0 {
		t.Errorf("engine without defaults has %d rules, want 0", len(rules))
	}
}

// TestNewEngineMissingCollaborators verifies construction fails loudly without a store or dispatcher
func TestNewEngineMissingCollaborators(t *testing.T) {
	_, err := NewEngine(nil, &fakeDispatcher{})
	if !errors.Is(err, ErrEngineConstruction) {
		t.Errorf("NewEngine(nil store) error = %v, want ErrEngineConstruction", err)
	}

	_, err = NewEngine(NewInMemoryRuleStore(), nil)
	if !errors.Is(err, ErrEngineConstruction) {
		t.Errorf("NewEngine(nil dispatcher) error = %v, want ErrEngineConstruction", err)
	}
}

// TestNewEngineRejectsBadStoredExpression verifies stored guards are compiled at construction
func TestNewEngineRejectsBadStoredExpression(t *testing.T) {
	store := NewInMemoryRuleStore()
	store.Add(&Rule{ID: "bad", Name: "bad", Trigger: TriggerOrderCreated, Expression: `payload.total >`, Enabled: true})

	if _, err := NewEngine(store, &fakeDispatcher{}); err == nil {
		t.Error("NewEngine() should fail when a stored rule has an invalid expression")
	}
}

// TestNewEngineWithDefaultRules verifies the default policies are seeded in order
func TestNewEngineWithDefaultRules(t *testing.T) {
	engine, _ := newTestEngine(t, WithDefaultRules())

	rules, err := engine.GetRules()
	if err != nil {
		t.Fatalf("GetRules() failed: %v", err)
	}

	want := []string{
		RuleNotifyOnConfirm,
		RuleDecreaseStock,
		RuleNotifyOnShip,
		RuleFlagHighValue,
		RuleCancelStalePending,
		RuleVIPDiscount,
	}
	if len(rules) != len(want) {
		t.Fatalf("got %d default rules, want %d", len(rules), len(want))
	}
	for i, id := range want {
		if rules[i].ID != id {
			t.Errorf("rule %d ID = %s, want %s", i, rules[i].ID, id)
		}
		if !rules[i].Enabled {
			t.Errorf("default rule %s should be enabled", id)
		}
	}
}

// TestProcessEventHighValueOrder verifies a large regular order fires the high value rule but not the VIP discount
func TestProcessEventHighValueOrder(t *testing.T) {
	engine, dispatcher := newTestEngine(t, WithDefaultRules())

	result := engine.ProcessEvent(context.Background(), TriggerOrderCreated, Payload{
		"order_id":      "o-1",
		"total":         600,
		"customer_type": "regular",
	})

	if !result.Success {
		t.Fatalf("ProcessEvent() failed: %s", result.Error)
	}
	if result.RulesExecuted != 1 {
		t.Fatalf("RulesExecuted = %d, want 1 (fired %v)", result.RulesExecuted, firedRuleIDs(result))
	}
	if result.Outcomes[0].RuleID != RuleFlagHighValue {
		t.Errorf("fired rule = %s, want %s", result.Outcomes[0].RuleID, RuleFlagHighValue)
	}

	for _, call := range dispatcher.Calls() {
		if call.RuleID == RuleVIPDiscount {
			t.Error("VIP discount must not fire for a regular customer")
		}
	}
}

// TestProcessEventOrderConfirmed verifies both confirm rules fire in store order
func TestProcessEventOrderConfirmed(t *testing.T) {
	engine, dispatcher := newTestEngine(t, WithDefaultRules())

	result := engine.ProcessEvent(context.Background(), TriggerOrderStatusChanged, Payload{
		"previous_status": "pending",
		"new_status":      "confirmed",
	})

	if !result.Success {
		t.Fatalf("ProcessEvent() failed: %s", result.Error)
	}
	if result.RulesExecuted != 2 {
		t.Fatalf("RulesExecuted = %d, want 2", result.RulesExecuted)
	}

	wantCalls := []dispatchCall{
		{RuleNotifyOnConfirm, ActionSendEmail},
		{RuleNotifyOnConfirm, ActionCreateNotification},
		{RuleDecreaseStock, ActionUpdateStock},
	}
	calls := dispatcher.Calls()
	if len(calls) != len(wantCalls) {
		t.Fatalf("dispatcher received %d calls, want %d: %v", len(calls), len(wantCalls), calls)
	}
	for i, want := range wantCalls {
		if calls[i] != want {
			t.Errorf("call %d = %v, want %v", i, calls[i], want)
		}
	}
}

// TestProcessEventStalePendingOrder verifies the scheduled default rule cancels old pending orders only
func TestProcessEventStalePendingOrder(t *testing.T) {
	engine, _ := newTestEngine(t, WithDefaultRules())

	testCases := []struct {
		name         string
		payload      Payload
		wantExecuted int
	}{
		{"stale pending", OrderFacts{OrderID: "o-1", Status: "pending", HoursPending: 72}.Payload(), 1},
		{"fresh pending", OrderFacts{OrderID: "o-2", Status: "pending", HoursPending: 2}.Payload(), 0},
		{"stale confirmed", OrderFacts{OrderID: "o-3", Status: "confirmed", HoursPending: 72}.Payload(), 0},
		{"plain tick", Payload{"tick_at": "2026-01-01T00:00:00Z"}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := engine.ProcessEvent(context.Background(), TriggerScheduled, tc.payload)
			if result.RulesExecuted != tc.wantExecuted {
				t.Errorf("RulesExecuted = %d, want %d", result.RulesExecuted, tc.wantExecuted)
			}
		})
	}
}

// TestProcessEventNoMatch verifies an event with no matching rules reports zero executions
func TestProcessEventNoMatch(t *testing.T) {
	engine, dispatcher := newTestEngine(t, WithDefaultRules())

	result := engine.ProcessEvent(context.Background(), TriggerOrderStatusChanged, Payload{"new_status": "delivered"})

	if !result.Success || result.RulesExecuted != 0 {
		t.Errorf("result = %+v, want success with 0 rules", result)
	}
	if len(dispatcher.Calls()) != 0 {
		t.Error("no actions should run when nothing matches")
	}
}

// TestProcessEventTriggerMismatch verifies rules only fire for their own trigger
func TestProcessEventTriggerMismatch(t *testing.T) {
	engine, _ := newTestEngine(t)
	mustAdd(t, engine, &Rule{
		Name:       "created only",
		Trigger:    TriggerOrderCreated,
		Conditions: Conditions{"total": Gte(0)},
		Actions:    []ActionSpec{{Type: ActionCreateTask}},
		Enabled:    true,
	})

	result := engine.ProcessEvent(context.Background(), TriggerOrderStatusChanged, Payload{"total": 10})
	if result.RulesExecuted != 0 {
		t.Errorf("rule fired for the wrong trigger")
	}
}

// TestProcessEventDisabledRule verifies disabled rules never fire and toggling takes effect immediately
func TestProcessEventDisabledRule(t *testing.T) {
	engine, _ := newTestEngine(t)
	rule := mustAdd(t, engine, &Rule{
		ID:      "vip",
		Name:    "vip",
		Trigger: TriggerOrderCreated,
		Actions: []ActionSpec{{Type: ActionApplyDiscount}},
		Enabled: false,
	})
	ctx := context.Background()
	payload := Payload{"total": 100}

	if got := engine.ProcessEvent(ctx, TriggerOrderCreated, payload).RulesExecuted; got != 0 {
		t.Fatalf("disabled rule fired")
	}

	engine.ToggleRule(rule.ID, true)
	if got := engine.ProcessEvent(ctx, TriggerOrderCreated, payload).RulesExecuted; got != 1 {
		t.Fatalf("enabled rule did not fire (RulesExecuted = %d)", got)
	}

	engine.ToggleRule(rule.ID, false)
	if got := engine.ProcessEvent(ctx, TriggerOrderCreated, payload).RulesExecuted; got != 0 {
		t.Errorf("rule fired after being disabled again")
	}

	stored, ok := engine.GetRule(rule.ID)
	if !ok {
		t.Fatal("toggled rule should remain in the store")
	}
	if stored.Enabled {
		t.Error("stored rule should be disabled")
	}
}

// TestProcessEventAfterRemove verifies removed rules stop firing
func TestProcessEventAfterRemove(t *testing.T) {
	engine, _ := newTestEngine(t, WithDefaultRules())
	ctx := context.Background()
	payload := Payload{"new_status": "confirmed"}

	engine.RemoveRule(RuleDecreaseStock)

	result := engine.ProcessEvent(ctx, TriggerOrderStatusChanged, payload)
	if result.RulesExecuted != 1 || result.Outcomes[0].RuleID != RuleNotifyOnConfirm {
		t.Errorf("fired %v, want only %s", firedRuleIDs(result), RuleNotifyOnConfirm)
	}
	if _, ok := engine.GetRule(RuleDecreaseStock); ok {
		t.Error("GetRule() should not find a removed rule")
	}
}

// TestProcessEventActionFailureContinues verifies one failing action does not stop later actions or rules
func TestProcessEventActionFailureContinues(t *testing.T) {
	engine, dispatcher := newTestEngine(t)
	dispatcher.fail = map[ActionType]error{ActionSendEmail: errors.New("smtp down")}

	mustAdd(t, engine, &Rule{
		ID:      "first",
		Name:    "first",
		Trigger: TriggerOrderCreated,
		Actions: []ActionSpec{{Type: ActionSendEmail}, {Type: ActionCreateNotification}},
		Enabled: true,
	})
	mustAdd(t, engine, &Rule{
		ID:      "second",
		Name:    "second",
		Trigger: TriggerOrderCreated,
		Actions: []ActionSpec{{Type: ActionCreateTask}},
		Enabled: true,
	})

	result := engine.ProcessEvent(context.Background(), TriggerOrderCreated, Payload{"order_id": "o-1"})

	if !result.Success {
		t.Fatalf("action failure must not fail the event: %s", result.Error)
	}
	if result.RulesExecuted != 2 {
		t.Fatalf("RulesExecuted = %d, want 2", result.RulesExecuted)
	}
	if len(dispatcher.Calls()) != 3 {
		t.Errorf("dispatcher received %d calls, want 3", len(dispatcher.Calls()))
	}

	first := result.Outcomes[0].Actions
	if first[0].Status != ActionFailed {
		t.Errorf("send_email status = %s, want %s", first[0].Status, ActionFailed)
	}
	if !strings.Contains(first[0].Error, "smtp down") || !strings.Contains(first[0].Error, "first") {
		t.Errorf("error %q should carry the cause and rule ID", first[0].Error)
	}
	if first[1].Status != ActionSucceeded {
		t.Errorf("create_notification status = %s, want %s", first[1].Status, ActionSucceeded)
	}
	if result.Outcomes[1].Actions[0].Status != ActionSucceeded {
		t.Errorf("second rule action status = %s, want %s", result.Outcomes[1].Actions[0].Status, ActionSucceeded)
	}
}

// TestProcessEventActionPanic verifies a panicking action is contained and recorded as failed
func TestProcessEventActionPanic(t *testing.T) {
	engine, dispatcher := newTestEngine(t)
	dispatcher.panicOn = ActionUpdateStock

	mustAdd(t, engine, &Rule{
		ID:      "stock",
		Name:    "stock",
		Trigger: TriggerOrderStatusChanged,
		Actions: []ActionSpec{{Type: ActionUpdateStock}, {Type: ActionCreateTask}},
		Enabled: true,
	})

	result := engine.ProcessEvent(context.Background(), TriggerOrderStatusChanged, Payload{})

	if !result.Success {
		t.Fatalf("panic in an action must not fail the event: %s", result.Error)
	}
	actions := result.Outcomes[0].Actions
	if actions[0].Status != ActionFailed || !strings.Contains(actions[0].Error, "panic") {
		t.Errorf("panicking action result = %+v, want failed with panic error", actions[0])
	}
	if actions[1].Status != ActionSucceeded {
		t.Errorf("action after panic status = %s, want %s", actions[1].Status, ActionSucceeded)
	}
}

// TestProcessEventUnsupportedAction verifies unknown action types are skipped, not failed
func TestProcessEventUnsupportedAction(t *testing.T) {
	engine, dispatcher := newTestEngine(t)
	dispatcher.fail = map[ActionType]error{
		"send_sms": fmt.Errorf("%w: send_sms", ErrUnsupportedAction),
	}

	mustAdd(t, engine, &Rule{
		Name:    "sms",
		Trigger: TriggerOrderCreated,
		Actions: []ActionSpec{{Type: "send_sms"}},
		Enabled: true,
	})

	result := engine.ProcessEvent(context.Background(), TriggerOrderCreated, Payload{})
	if got := result.Outcomes[0].Actions[0].Status; got != ActionSkipped {
		t.Errorf("unknown action status = %s, want %s", got, ActionSkipped)
	}
}

// TestProcessEventStoreFailure verifies a store error is reported instead of panicking
func TestProcessEventStoreFailure(t *testing.T) {
	store := &failingStore{InMemoryRuleStore: NewInMemoryRuleStore()}
	engine, err := NewEngine(store, &fakeDispatcher{})
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	mustAdd(t, engine, &Rule{Name: "r", Trigger: TriggerOrderCreated, Enabled: true})

	store.fail = true
	result := engine.ProcessEvent(context.Background(), TriggerOrderCreated, Payload{})

	if result.Success {
		t.Fatal("ProcessEvent() should report failure when the store fails")
	}
	if !strings.Contains(result.Error, "store unavailable") {
		t.Errorf("Error = %q, want the store error", result.Error)
	}
}

// TestProcessEventExpressionGuard verifies a CEL guard is AND-ed with conditions
func TestProcessEventExpressionGuard(t *testing.T) {
	engine, _ := newTestEngine(t)
	mustAdd(t, engine, &Rule{
		Name:       "gmail vip",
		Trigger:    TriggerOrderCreated,
		Conditions: Conditions{"customer_type": Equals("vip")},
		Expression: `payload.customer_email.endsWith("@gmail.com") && trigger == "order_created"`,
		Actions:    []ActionSpec{{Type: ActionCreateTask}},
		Enabled:    true,
	})
	ctx := context.Background()

	testCases := []struct {
		name    string
		payload Payload
		want    int
	}{
		{"both hold", Payload{"customer_type": "vip", "customer_email": "a@gmail.com"}, 1},
		{"guard fails", Payload{"customer_type": "vip", "customer_email": "a@example.com"}, 0},
		{"conditions fail", Payload{"customer_type": "regular", "customer_email": "a@gmail.com"}, 0},
		{"guard errors on missing key", Payload{"customer_type": "vip"}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := engine.ProcessEvent(ctx, TriggerOrderCreated, tc.payload).RulesExecuted; got != tc.want {
				t.Errorf("RulesExecuted = %d, want %d", got, tc.want)
			}
		})
	}
}

// TestAddRuleValidation verifies invalid rules are rejected before reaching the store
func TestAddRuleValidation(t *testing.T) {
	engine, _ := newTestEngine(t)

	testCases := []struct {
		name string
		rule *Rule
	}{
		{"nil rule", nil},
		{"empty name", &Rule{Trigger: TriggerOrderCreated}},
		{"unknown trigger", &Rule{Name: "r", Trigger: "order_deleted"}},
		{"bad condition key", &Rule{Name: "r", Trigger: TriggerOrderCreated, Conditions: Conditions{"total-amount": Gte(1)}}},
		{"bad expression", &Rule{Name: "r", Trigger: TriggerOrderCreated, Expression: `payload.total >`}},
		{"bad schedule", &Rule{Name: "r", Trigger: TriggerScheduled, Schedule: "every now and then"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := engine.AddRule(tc.rule); err == nil {
				t.Error("AddRule() should fail")
			}
		})
	}

	rules, _ := engine.GetRules()
	if len(rules) != 0 {
		t.Errorf("invalid rules reached the store: %d", len(rules))
	}
}

// TestAddRuleGeneratesID verifies rules added without an ID get one
func TestAddRuleGeneratesID(t *testing.T) {
	engine, _ := newTestEngine(t)
	stored := mustAdd(t, engine, &Rule{Name: "r", Trigger: TriggerOrderCreated})

	if stored.ID == "" {
		t.Fatal("AddRule() should return the generated ID")
	}
	if _, ok := engine.GetRule(stored.ID); !ok {
		t.Error("GetRule() should find the rule by its generated ID")
	}
}

// TestProcessEventRecorder verifies the recorder sees every event and action
func TestProcessEventRecorder(t *testing.T) {
	recorder := &fakeRecorder{}
	engine, dispatcher := newTestEngine(t, WithDefaultRules(), WithRecorder(recorder))
	dispatcher.fail = map[ActionType]error{ActionUpdateStock: errors.New("no stock row")}

	engine.ProcessEvent(context.Background(), TriggerOrderStatusChanged, Payload{"new_status": "confirmed"})
	engine.ProcessEvent(context.Background(), TriggerOrderCreated, Payload{"total": 1})

	if len(recorder.events) != 2 {
		t.Fatalf("recorded %d events, want 2", len(recorder.events))
	}
	if recorder.events[0] != (recordedEvent{TriggerOrderStatusChanged, true, 2}) {
		t.Errorf("first event = %+v", recorder.events[0])
	}
	if recorder.events[1] != (recordedEvent{TriggerOrderCreated, true, 0}) {
		t.Errorf("second event = %+v", recorder.events[1])
	}
	if recorder.actions[ActionSucceeded] != 2 || recorder.actions[ActionFailed] != 1 {
		t.Errorf("action statuses = %v, want 2 succeeded and 1 failed", recorder.actions)
	}
}

// TestEngineCacheTTL verifies an expired cache is refreshed from the store
func TestEngineCacheTTL(t *testing.T) {
	store := NewInMemoryRuleStore()
	engine, err := NewEngine(store, &fakeDispatcher{}, WithCacheConfig(CacheConfig{TTL: 10 * time.Millisecond}))
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	// Writing to the store directly bypasses engine invalidation
	store.Add(&Rule{Name: "direct", Trigger: TriggerOrderCreated, Enabled: true})
	time.Sleep(20 * time.Millisecond)

	if got := engine.ProcessEvent(context.Background(), TriggerOrderCreated, Payload{}).RulesExecuted; got != 1 {
		t.Errorf("RulesExecuted = %d after TTL expiry, want 1", got)
	}
}

// TestEngineConcurrentProcessEvent verifies events and rule mutations can run concurrently
func TestEngineConcurrentProcessEvent(t *testing.T) {
	engine, _ := newTestEngine(t, WithDefaultRules())

	var wg sync.WaitGroup
	numGoroutines := 10
	iterations := 50

	for i := range numGoroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range iterations {
				if id%2 == 0 {
					engine.ToggleRule(RuleDecreaseStock, j%2 == 0)
					continue
				}
				result := engine.ProcessEvent(context.Background(), TriggerOrderStatusChanged, Payload{"new_status": "confirmed"})
				if !result.Success {
					t.Errorf("concurrent ProcessEvent() failed: %s", result.Error)
				}
				if result.RulesExecuted < 1 || result.RulesExecuted > 2 {
					t.Errorf("RulesExecuted = %d, want 1 or 2", result.RulesExecuted)
				}
			}
		}(i)
	}

	wg.Wait()
}

// blockingStore parks the first List call after arming until release is closed
type blockingStore struct {
	*InMemoryRuleStore
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (s *blockingStore) List() ([]*Rule, error) {
	all, err := s.InMemoryRuleStore.List()
	if s.armed.CompareAndSwap(true, false) {
		close(s.entered)
		<-s.release
	}
	return all, err
}

// TestEngineToggleDuringCacheRefresh verifies a refresh that read the store
// before a toggle does not leave the old rules cached
func TestEngineToggleDuringCacheRefresh(t *testing.T) {
	store := &blockingStore{
		InMemoryRuleStore: NewInMemoryRuleStore(),
		entered:           make(chan struct{}),
		release:           make(chan struct{}),
	}
	dispatcher := &fakeDispatcher{}
	engine, err := NewEngine(store, dispatcher)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	mustAdd(t, engine, &Rule{
		ID:      "r",
		Name:    "toggled",
		Trigger: TriggerOrderCreated,
		Enabled: true,
		Actions: []ActionSpec{{Type: ActionCreateTask}},
	})

	store.armed.Store(true)
	done := make(chan *ProcessResult)
	go func() {
		done <- engine.ProcessEvent(context.Background(), TriggerOrderCreated, Payload{})
	}()

	<-store.entered
	engine.ToggleRule("r", false)
	close(store.release)

	if got := (<-done).RulesExecuted; got != 1 {
		t.Errorf("in-flight RulesExecuted = %d, want 1 from the pre-toggle read", got)
	}

	for i := range 3 {
		if got := engine.ProcessEvent(context.Background(), TriggerOrderCreated, Payload{}).RulesExecuted; got != 0 {
			t.Fatalf("call %d after disable: RulesExecuted = %d, want 0", i, got)
		}
	}
}

// supportingDispatcher only runs create_task
type supportingDispatcher struct{ fakeDispatcher }

func (*supportingDispatcher) SupportsAction(action ActionType) bool {
	return action == ActionCreateTask
}

// TestUnsupportedActions verifies the dispatcher is asked about declared action types
func TestUnsupportedActions(t *testing.T) {
	rule := &Rule{
		Name:    "mixed",
		Trigger: TriggerOrderCreated,
		Actions: []ActionSpec{{Type: ActionCreateTask}, {Type: "send_sms"}, {Type: ActionSendEmail}},
	}

	engine, err := NewEngine(NewInMemoryRuleStore(), &supportingDispatcher{})
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	got := engine.UnsupportedActions(rule)
	if len(got) != 2 || got[0] != "send_sms" || got[1] != ActionSendEmail {
		t.Errorf("UnsupportedActions() = %v, want [send_sms send_email]", got)
	}

	// AddRule still accepts the rule; unsupported actions are skipped at run time
	mustAdd(t, engine, rule)

	plain, _ := newTestEngine(t)
	if got := plain.UnsupportedActions(rule); len(got) != 0 {
		t.Errorf("UnsupportedActions() without ActionSupporter = %v, want none", got)
	}
}
