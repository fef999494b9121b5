package service

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/checkout"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderService owns order creation and the admin read/update path. It
// implements checkout.OrderCreator, so the submission pipeline can run
// against it in-process.
type OrderService struct {
	store          *store.Store
	composer       *checkout.Composer
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, eventPublisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:          store,
		composer:       checkout.NewComposer(),
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// CreateOrder composes an immutable snapshot from the submission and
// persists it. Ids are assigned here, server-side, so clients are never
// trusted with identifier generation. A validation failure writes
// nothing and publishes nothing.
func (s *OrderService) CreateOrder(ctx context.Context, req *checkout.CreateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.CreateOrder")
	defer span.End()

	order, err := s.composer.Compose(req.Items, req.FormData)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("invalid_submission").Inc()
		return nil, err
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		util.OrdersFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("total", order.Total.String()),
		zap.Int("line_items", len(order.Items)))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID:  order.ID,
		Subtotal: order.Subtotal,
		Total:    order.Total,
		Items:    order.Items,
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.PublishOrderCreated(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
		}
	}

	return order, nil
}

// GetOrder retrieves an order by ID
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.store.GetOrderByID(ctx, orderID)
}

// ListOrders retrieves orders, optionally filtered by status, newest first
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]models.Order, error) {
	if status == "" {
		return s.store.GetOrders(ctx)
	}
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("unknown order status %q", status)
	}
	return s.store.GetOrdersByStatus(ctx, status)
}

// UpdateOrderRequest carries the post-creation mutable fields. Absent
// fields are left as they are.
type UpdateOrderRequest struct {
	OrderStatus    *string             `json:"order_status,omitempty"`
	Payment        *models.PaymentInfo `json:"payment,omitempty"`
	Courier        *string             `json:"courier,omitempty"`
	TrackingNumber *string             `json:"tracking_number,omitempty"`
}

// UpdateOrder applies an admin update to an order. Items, amounts,
// client and address are write-once at creation; this path cannot touch
// them by construction.
func (s *OrderService) UpdateOrder(ctx context.Context, orderID string, req *UpdateOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.UpdateOrder")
	defer span.End()

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if req.OrderStatus != nil {
		if !models.ValidOrderStatus(*req.OrderStatus) {
			return nil, fmt.Errorf("unknown order status %q", *req.OrderStatus)
		}
		order.OrderStatus = *req.OrderStatus
	}
	if req.Payment != nil {
		order.Payment = *req.Payment
	}
	if req.Courier != nil {
		order.Courier = req.Courier
	}
	if req.TrackingNumber != nil {
		order.TrackingNumber = req.TrackingNumber
	}

	if err := s.store.UpdateOrderFulfillment(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	s.logger.Info("Order updated",
		zap.String("order_id", orderID),
		zap.String("status", order.OrderStatus))

	if order.OrderStatus == models.OrderStatusCancelled && s.eventPublisher != nil {
		util.OrdersCancelledTotal.Inc()
		event := &models.OrderCancelledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCancelled,
				Timestamp: time.Now(),
			},
			OrderID: orderID,
			Reason:  "cancelled_by_admin",
		}
		if err := s.eventPublisher.PublishOrderCancelled(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
		}
	}

	return s.store.GetOrderByID(ctx, orderID)
}

// DeleteOrder removes an order permanently
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	ctx, span := util.StartSpan(ctx, "OrderService.DeleteOrder")
	defer span.End()

	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	s.logger.Info("Order deleted", zap.String("order_id", orderID))
	return nil
}
