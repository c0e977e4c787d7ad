package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/rules"
	"github.com/Ronei-rcm/rare-toy-companion-final-8040-sub010/storage"
)

// StaleOrderLister is implemented by storage.PostgresStore and storage.MemoryStore
type StaleOrderLister interface {
	ListStalePendingOrders(ctx context.Context, cutoff time.Time) ([]storage.Order, error)
}

// StaleOrderSource yields one payload per pending order older than After
type StaleOrderSource struct {
	Lister StaleOrderLister
	After  time.Duration
}

// NewStaleOrderSource creates a source. A non-positive after uses
// rules.StalePendingHours.
func NewStaleOrderSource(lister StaleOrderLister, after time.Duration) *StaleOrderSource {
	if after <= 0 {
		after = rules.StalePendingHours * time.Hour
	}
	return &StaleOrderSource{Lister: lister, After: after}
}

// Payloads lists stale pending orders with their age in whole hours
func (s *StaleOrderSource) Payloads(ctx context.Context, now time.Time) ([]rules.Payload, error) {
	orders, err := s.Lister.ListStalePendingOrders(ctx, now.Add(-s.After))
	if err != nil {
		return nil, fmt.Errorf("list stale pending orders: %w", err)
	}

	payloads := make([]rules.Payload, 0, len(orders))
	for _, o := range orders {
		facts := rules.OrderFacts{
			OrderID:       o.ID,
			CustomerID:    o.CustomerID,
			CustomerEmail: o.CustomerEmail,
			CustomerType:  o.CustomerType,
			Status:        o.Status,
			Total:         o.Total,
			HoursPending:  now.Sub(o.CreatedAt).Truncate(time.Hour).Hours(),
		}
		payloads = append(payloads, facts.Payload())
	}
	return payloads, nil
}
