package rules

// Default rule IDs. Stable so operators can toggle them by name.
const (
	RuleNotifyOnConfirm    = "default-notify-order-confirmed"
	RuleDecreaseStock      = "default-decrease-stock-on-confirm"
	RuleNotifyOnShip       = "default-notify-order-shipped"
	RuleFlagHighValue      = "default-flag-high-value-order"
	RuleCancelStalePending = "default-cancel-stale-pending-order"
	RuleVIPDiscount        = "default-vip-discount"
)

const (
	HighValueOrderThreshold = 500
	StalePendingHours       = 48
)

// DefaultRules returns the built-in storefront policies in evaluation order
func DefaultRules() []*Rule {
	return []*Rule{
		{
			ID:      RuleNotifyOnConfirm,
			Name:    "Notify customer when order is confirmed",
			Trigger: TriggerOrderStatusChanged,
			Conditions: Conditions{
				"new_status": Equals("confirmed"),
			},
			Actions: []ActionSpec{
				{Type: ActionSendEmail, Parameters: map[string]any{
					"template": "order_confirmed",
					"to":       "customer_email",
				}},
				{Type: ActionCreateNotification, Parameters: map[string]any{
					"title":   "Order confirmed",
					"message": "Your order has been confirmed and is being prepared.",
				}},
			},
			Enabled: true,
		},
		{
			ID:      RuleDecreaseStock,
			Name:    "Decrease stock when order is confirmed",
			Trigger: TriggerOrderStatusChanged,
			Conditions: Conditions{
				"new_status": Equals("confirmed"),
			},
			Actions: []ActionSpec{
				{Type: ActionUpdateStock, Parameters: map[string]any{
					"operation": "decrease",
				}},
			},
			Enabled: true,
		},
		{
			ID:      RuleNotifyOnShip,
			Name:    "Notify customer when order ships",
			Trigger: TriggerOrderStatusChanged,
			Conditions: Conditions{
				"new_status": Equals("shipped"),
			},
			Actions: []ActionSpec{
				{Type: ActionSendEmail, Parameters: map[string]any{
					"template": "order_shipped",
					"to":       "customer_email",
				}},
				{Type: ActionCreateNotification, Parameters: map[string]any{
					"title":   "Order shipped",
					"message": "Your order is on its way.",
				}},
			},
			Enabled: true,
		},
		{
			ID:      RuleFlagHighValue,
			Name:    "Flag high value orders for review",
			Trigger: TriggerOrderCreated,
			Conditions: Conditions{
				"total": Gte(HighValueOrderThreshold),
			},
			Actions: []ActionSpec{
				{Type: ActionCreateNotification, Parameters: map[string]any{
					"target":  "admin",
					"title":   "High value order",
					"message": "A new order above the review threshold was placed.",
				}},
				{Type: ActionCreateTask, Parameters: map[string]any{
					"title":       "Review high value order",
					"description": "Check payment and stock before confirming.",
					"assigned_to": "sales",
				}},
			},
			Enabled: true,
		},
		{
			ID:       RuleCancelStalePending,
			Name:     "Cancel orders pending for too long",
			Trigger:  TriggerScheduled,
			Schedule: "@every 1h",
			Conditions: Conditions{
				"status":        Equals("pending"),
				"hours_pending": Gte(StalePendingHours),
			},
			Actions: []ActionSpec{
				{Type: ActionUpdateOrder, Parameters: map[string]any{
					"field": "status",
					"value": "cancelled",
				}},
				{Type: ActionSendEmail, Parameters: map[string]any{
					"template": "order_cancelled",
					"to":       "customer_email",
				}},
			},
			Enabled: true,
		},
		{
			ID:      RuleVIPDiscount,
			Name:    "VIP discount on larger orders",
			Trigger: TriggerOrderCreated,
			Conditions: Conditions{
				"customer_type": Equals("vip"),
				"total":         Gte(200),
			},
			Actions: []ActionSpec{
				{Type: ActionApplyDiscount, Parameters: map[string]any{
					"type":  "percentage",
					"value": 10,
				}},
			},
			Enabled: true,
		},
	}
}
