package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process implementation of the action persistence
// operations. Used when no database is configured and in tests.
type MemoryStore struct {
	mu            sync.RWMutex
	orders        map[string]*Order
	products      map[string]*Product
	notifications []Notification
	tasks         []Task
	now           func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:   make(map[string]*Order),
		products: make(map[string]*Product),
		now:      time.Now,
	}
}

// Ping always succeeds
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// CreateNotification records a notification
func (s *MemoryStore) CreateNotification(_ context.Context, n Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}

	s.mu.Lock()
	s.notifications = append(s.notifications, n)
	s.mu.Unlock()
	return nil
}

// UpdateOrderField sets one whitelisted field of an order
func (s *MemoryStore) UpdateOrderField(_ context.Context, orderID, field string, value any) error {
	arg, err := orderFieldValue(field, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}

	switch field {
	case "status":
		o.Status = arg.(string)
	case "payment_status":
		o.PaymentStatus = arg.(string)
	case "tracking_code":
		o.TrackingCode = arg.(string)
	case "assigned_to":
		o.AssignedTo = arg.(string)
	case "notes":
		o.Notes = arg.(string)
	case "total":
		o.Total = arg.(float64)
	case "discount":
		o.Discount = arg.(float64)
	}
	o.UpdatedAt = s.now()
	return nil
}

// DecrementStock lowers a product's stock by quantity, never below zero
func (s *MemoryStore) DecrementStock(_ context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, ErrNotFound)
	}
	p.Stock = max(p.Stock-quantity, 0)
	return nil
}

// ApplyDiscount adds amount to the order's discount and subtracts it from its total
func (s *MemoryStore) ApplyDiscount(_ context.Context, orderID string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	o.Discount += amount
	o.Total -= amount
	o.UpdatedAt = s.now()
	return nil
}

// AssignOrder sets the staff member responsible for an order
func (s *MemoryStore) AssignOrder(_ context.Context, orderID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	o.AssignedTo = userID
	o.UpdatedAt = s.now()
	return nil
}

// CreateTask records a follow-up task
func (s *MemoryStore) CreateTask(_ context.Context, t Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = "pending"
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}

	s.mu.Lock()
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	return nil
}

// CreateOrder stores a copy of o, replacing any order with the same ID
func (s *MemoryStore) CreateOrder(_ context.Context, o Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	s.mu.Lock()
	s.orders[o.ID] = &o
	s.mu.Unlock()
	return nil
}

// GetOrder returns a copy of an order
func (s *MemoryStore) GetOrder(_ context.Context, id string) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	c := *o
	return &c, nil
}

// ListStalePendingOrders returns pending orders created before cutoff, oldest first
func (s *MemoryStore) ListStalePendingOrders(_ context.Context, cutoff time.Time) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var orders []Order
	for _, o := range s.orders {
		if o.Status == "pending" && o.CreatedAt.Before(cutoff) {
			orders = append(orders, *o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
	return orders, nil
}

// UpsertProduct creates a product or replaces its name and stock
func (s *MemoryStore) UpsertProduct(_ context.Context, p Product) error {
	s.mu.Lock()
	s.products[p.ID] = &p
	s.mu.Unlock()
	return nil
}

// GetProduct returns a copy of a product
func (s *MemoryStore) GetProduct(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	c := *p
	return &c, nil
}

// Notifications returns the recorded notifications in insertion order
func (s *MemoryStore) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// Tasks returns the recorded tasks in insertion order
func (s *MemoryStore) Tasks() []Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}
