package storage

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when the targeted order or product does not exist
	ErrNotFound = errors.New("record not found")

	// ErrUnknownField is returned by UpdateOrderField for columns rules may not write
	ErrUnknownField = errors.New("order field is not updatable")
)

// Order columns rules may change through update_order
var updatableOrderFields = map[string]bool{
	"status":         true,
	"total":          true,
	"discount":       true,
	"assigned_to":    true,
	"notes":          true,
	"payment_status": true,
	"tracking_code":  true,
}

// numericOrderFields must be written as numbers
var numericOrderFields = map[string]bool{
	"total":    true,
	"discount": true,
}

// Order is a storefront order as seen by the automation engine
type Order struct {
	ID            string    `json:"id"`
	CustomerID    string    `json:"customer_id"`
	CustomerEmail string    `json:"customer_email"`
	CustomerType  string    `json:"customer_type"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TrackingCode  string    `json:"tracking_code,omitempty"`
	AssignedTo    string    `json:"assigned_to,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Total         float64   `json:"total"`
	Discount      float64   `json:"discount"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Product holds the inventory count actions decrement
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Stock int    `json:"stock"`
}

// Notification is an in-app message for a customer, or for admins when UserID is empty
type Notification struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id,omitempty"`
	Title     string         `json:"title"`
	Message   string         `json:"message"`
	Type      string         `json:"type"`
	Data      map[string]any `json:"data,omitempty"`
	Read      bool           `json:"read"`
	CreatedAt time.Time      `json:"created_at"`
}

// Task is a follow-up item for staff, linked to an order
type Task struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"order_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	AssignedTo  string    `json:"assigned_to,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
