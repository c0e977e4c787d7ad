package rules

// ItemFacts is one order line as seen by conditions and actions
type ItemFacts struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// OrderFacts is the typed form of an order event payload
type OrderFacts struct {
	OrderID        string      `json:"order_id"`
	CustomerID     string      `json:"customer_id,omitempty"`
	CustomerEmail  string      `json:"customer_email,omitempty"`
	CustomerType   string      `json:"customer_type,omitempty"`
	Status         string      `json:"status,omitempty"`
	PreviousStatus string      `json:"previous_status,omitempty"`
	NewStatus      string      `json:"new_status,omitempty"`
	Total          float64     `json:"total"`
	Items          []ItemFacts `json:"items,omitempty"`

	// Derived by the scheduler from the order's creation time
	HoursPending float64 `json:"hours_pending,omitempty"`
}

// Payload converts the facts to the map form rules are evaluated against.
// Empty optional fields are left out so conditions on them fail.
func (f OrderFacts) Payload() Payload {
	p := Payload{
		"order_id": f.OrderID,
		"total":    f.Total,
	}
	setString(p, "customer_id", f.CustomerID)
	setString(p, "customer_email", f.CustomerEmail)
	setString(p, "customer_type", f.CustomerType)
	setString(p, "status", f.Status)
	setString(p, "previous_status", f.PreviousStatus)
	setString(p, "new_status", f.NewStatus)

	if f.HoursPending > 0 {
		p["hours_pending"] = f.HoursPending
	}

	if len(f.Items) > 0 {
		items := make([]any, len(f.Items))
		for i, item := range f.Items {
			items[i] = map[string]any{
				"product_id": item.ProductID,
				"quantity":   item.Quantity,
			}
		}
		p["items"] = items
	}

	return p
}

func setString(p Payload, key, value string) {
	if value != "" {
		p[key] = value
	}
}
