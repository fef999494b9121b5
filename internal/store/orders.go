package store

import (
	"context"
	"database/sql"
	"fmt"

	"storefront-service/internal/models"
)

// CreateOrder persists a composed order snapshot. The snapshot arrives
// fully populated; nothing here recomputes totals or statuses.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (id, created_at, items, subtotal, total, client,
		                    address, notes, order_status, payment, courier, tracking_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.db.ExecContext(ctx, query,
		order.ID, order.CreatedAt, order.Items, order.Subtotal, order.Total,
		order.Client, order.Address, order.Notes, order.OrderStatus,
		order.Payment, order.Courier, order.TrackingNumber)
	return err
}

// GetOrderByID retrieves an order by ID
func (s *Store) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order, "SELECT * FROM orders WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders retrieves all orders, newest first
func (s *Store) GetOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders ORDER BY created_at DESC")
	return orders, err
}

// GetOrdersByStatus retrieves orders with a given status, newest first
func (s *Store) GetOrdersByStatus(ctx context.Context, status string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE order_status = $1 ORDER BY created_at DESC", status)
	return orders, err
}

// UpdateOrderFulfillment updates the post-creation mutable fields of an
// order: status, payment, courier and tracking number. Items, amounts,
// client and address are write-once at creation and deliberately absent
// from this statement.
func (s *Store) UpdateOrderFulfillment(ctx context.Context, order *models.Order) error {
	query := `
		UPDATE orders
		SET order_status = $1, payment = $2, courier = $3,
		    tracking_number = $4, updated_at = NOW()
		WHERE id = $5`

	res, err := s.db.ExecContext(ctx, query,
		order.OrderStatus, order.Payment, order.Courier,
		order.TrackingNumber, order.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, order.ID)
	}
	return nil
}

// UpdateOrderStatus updates only the order status
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID, status string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET order_status = $1, updated_at = NOW() WHERE id = $2",
		status, orderID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	return nil
}

// DeleteOrder removes an order
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrOrderNotFound, id)
	}
	return nil
}
