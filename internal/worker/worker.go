package worker

import (
	"context"
	"log"

	"storefront-service/internal/broker"
	"storefront-service/internal/service"
)

// SettlementWorker consumes payment outcome events from the settlement
// topic and applies them to orders.
type SettlementWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewSettlementWorker creates a new settlement worker
func NewSettlementWorker(
	consumer *broker.Consumer,
	settlement *service.SettlementService,
) *SettlementWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnPaymentSettled(settlement.HandlePaymentSettled)
	eventHandler.OnPaymentFailed(settlement.HandlePaymentFailed)

	return &SettlementWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *SettlementWorker) Start(ctx context.Context) error {
	log.Println("Starting settlement worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *SettlementWorker) Stop() error {
	log.Println("Stopping settlement worker...")
	return w.consumer.Close()
}
