package service

import (
	"context"
	"fmt"
	"time"

	"storefront-service/internal/broker"
	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettlementService applies out-of-band payment outcomes to orders.
// The storefront never processes payments itself: orders are created
// unpaid and someone confirms the payment later, which arrives here as
// a broker event.
type SettlementService struct {
	store          *store.Store
	eventPublisher *broker.EventPublisher
	logger         *zap.Logger
}

// NewSettlementService creates a new settlement service
func NewSettlementService(store *store.Store, eventPublisher *broker.EventPublisher) *SettlementService {
	return &SettlementService{
		store:          store,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
	}
}

// HandlePaymentSettled marks the order paid and records how it was
// settled. Redelivered events are absorbed via the processed_events
// table.
func (s *SettlementService) HandlePaymentSettled(ctx context.Context, event *models.PaymentSettledEvent) error {
	ctx, span := util.StartSpan(ctx, "SettlementService.HandlePaymentSettled")
	defer span.End()

	processed, err := s.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		s.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	order, err := s.store.GetOrderByID(ctx, event.OrderID)
	if err != nil {
		return fmt.Errorf("settlement for unknown order: %w", err)
	}

	settledAt := event.SettledAt
	order.OrderStatus = models.OrderStatusPaid
	order.Payment = models.PaymentInfo{
		Method:    event.Method,
		PayerName: event.PayerName,
		Status:    models.PaymentStatusPaid,
		Date:      &settledAt,
	}

	if err := s.store.UpdateOrderFulfillment(ctx, order); err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}

	util.OrdersSettledTotal.Inc()
	s.logger.Info("Order settled",
		zap.String("order_id", event.OrderID),
		zap.String("method", event.Method))

	if s.eventPublisher != nil {
		paid := &models.OrderPaidEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderPaid,
				Timestamp: time.Now(),
			},
			OrderID: event.OrderID,
			Method:  event.Method,
			Amount:  event.Amount,
		}
		if err := s.eventPublisher.PublishOrderPaid(ctx, paid); err != nil {
			s.logger.Error("Failed to publish OrderPaid event", zap.Error(err))
		}
	}

	if err := s.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		s.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}

// HandlePaymentFailed cancels the order a rejected payment belongs to.
func (s *SettlementService) HandlePaymentFailed(ctx context.Context, event *models.PaymentFailedEvent) error {
	ctx, span := util.StartSpan(ctx, "SettlementService.HandlePaymentFailed")
	defer span.End()

	processed, err := s.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		s.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	s.logger.Warn("Payment failed, cancelling order",
		zap.String("order_id", event.OrderID),
		zap.String("reason", event.Reason))

	if err := s.store.UpdateOrderStatus(ctx, event.OrderID, models.OrderStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel order: %w", err)
	}

	util.OrdersCancelledTotal.Inc()

	if s.eventPublisher != nil {
		cancelled := &models.OrderCancelledEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderCancelled,
				Timestamp: time.Now(),
			},
			OrderID: event.OrderID,
			Reason:  event.Reason,
		}
		if err := s.eventPublisher.PublishOrderCancelled(ctx, cancelled); err != nil {
			s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
		}
	}

	if err := s.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		s.logger.Error("Failed to mark event processed", zap.Error(err))
	}
	return nil
}
