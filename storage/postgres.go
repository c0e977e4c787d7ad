package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresStore implements the action persistence operations over the
// storefront PostgreSQL schema (see migrations/)
type PostgresStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresStore creates a new PostgreSQL-backed store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:  db,
		now: time.Now,
	}
}

// OpenPostgres opens and pings a lib/pq connection pool
func OpenPostgres(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Ping reports whether the database is reachable
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateNotification inserts a notification. An empty UserID targets admins.
func (s *PostgresStore) CreateNotification(ctx context.Context, n Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}

	data, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to encode notification data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, data, read, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
	`, n.ID, n.UserID, n.Title, n.Message, n.Type, data, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// UpdateOrderField sets one whitelisted column of an order
func (s *PostgresStore) UpdateOrderField(ctx context.Context, orderID, field string, value any) error {
	arg, err := orderFieldValue(field, value)
	if err != nil {
		return err
	}

	// field is whitelisted by orderFieldValue
	query := fmt.Sprintf(`UPDATE orders SET %s = $1, updated_at = $2 WHERE id = $3`, pq.QuoteIdentifier(field))

	result, err := s.db.ExecContext(ctx, query, arg, s.now(), orderID)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", field, err)
	}

	return expectRow(result, "order", orderID)
}

// DecrementStock lowers a product's stock by quantity, never below zero
func (s *PostgresStore) DecrementStock(ctx context.Context, productID string, quantity int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET stock = GREATEST(stock - $1, 0), updated_at = $2
		WHERE id = $3
	`, quantity, s.now(), productID)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	return expectRow(result, "product", productID)
}

// ApplyDiscount adds amount to the order's discount and subtracts it from its total
func (s *PostgresStore) ApplyDiscount(ctx context.Context, orderID string, amount float64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders
		SET discount = discount + $1, total = total - $1, updated_at = $2
		WHERE id = $3
	`, amount, s.now(), orderID)
	if err != nil {
		return fmt.Errorf("failed to apply discount: %w", err)
	}

	return expectRow(result, "order", orderID)
}

// AssignOrder sets the staff member responsible for an order
func (s *PostgresStore) AssignOrder(ctx context.Context, orderID, userID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders SET assigned_to = $1, updated_at = $2 WHERE id = $3
	`, userID, s.now(), orderID)
	if err != nil {
		return fmt.Errorf("failed to assign order: %w", err)
	}

	return expectRow(result, "order", orderID)
}

// CreateTask inserts a follow-up task
func (s *PostgresStore) CreateTask(ctx context.Context, t Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = "pending"
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, order_id, title, description, assigned_to, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, t.ID, t.OrderID, t.Title, t.Description, t.AssignedTo, t.Status, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	return nil
}

// CreateOrder inserts an order
func (s *PostgresStore) CreateOrder(ctx context.Context, o Order) error {
	now := s.now()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, customer_email, customer_type, status, payment_status,
			tracking_code, assigned_to, notes, total, discount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, o.ID, o.CustomerID, o.CustomerEmail, o.CustomerType, o.Status, o.PaymentStatus,
		o.TrackingCode, o.AssignedTo, o.Notes, o.Total, o.Discount, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

const orderColumns = `id, COALESCE(customer_id, ''), COALESCE(customer_email, ''), customer_type, status,
	payment_status, COALESCE(tracking_code, ''), COALESCE(assigned_to, ''), COALESCE(notes, ''),
	total, discount, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.CustomerEmail, &o.CustomerType, &o.Status,
		&o.PaymentStatus, &o.TrackingCode, &o.AssignedTo, &o.Notes,
		&o.Total, &o.Discount, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// GetOrder retrieves an order by ID
func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*Order, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &o, nil
}

// ListStalePendingOrders returns pending orders created before cutoff, oldest first
func (s *PostgresStore) ListStalePendingOrders(ctx context.Context, cutoff time.Time) ([]Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at ASC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	return orders, nil
}

// UpsertProduct creates a product or replaces its name and stock
func (s *PostgresStore) UpsertProduct(ctx context.Context, p Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, stock, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, stock = EXCLUDED.stock, updated_at = EXCLUDED.updated_at
	`, p.ID, p.Name, p.Stock, s.now())
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

// GetProduct retrieves a product by ID
func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	err := s.db.QueryRowContext(ctx, `SELECT id, name, stock FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Stock)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func expectRow(result sql.Result, kind, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
