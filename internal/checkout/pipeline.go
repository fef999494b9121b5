package checkout

import (
	"context"
	"sync"
	"time"

	"storefront-service/internal/cart"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"go.uber.org/zap"
)

// State is the submission pipeline state for one cart.
type State string

const (
	StateIdle       State = "IDLE"
	StateSubmitting State = "SUBMITTING"
	StateSucceeded  State = "SUCCEEDED"
	StateFailed     State = "FAILED"
)

// IsTerminal reports whether the state ends an attempt.
func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// OrderCreator delivers one composed submission to the order store and
// returns the persisted order.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error)
}

// Pipeline delivers one cart's checkout to the order store. It enforces
// single-flight submission, clears the cart only on confirmed success,
// and leaves it untouched on any failure so the user can retry.
type Pipeline struct {
	cart    *cart.Engine
	creator OrderCreator
	logger  *zap.Logger

	mu      sync.Mutex // never held across the creator call
	state   State
	attempt uint64
}

// NewPipeline creates a submission pipeline for the given cart.
func NewPipeline(cartEngine *cart.Engine, creator OrderCreator, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		cart:    cartEngine,
		creator: creator,
		logger:  logger,
		state:   StateIdle,
	}
}

// State returns the current pipeline state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Abandon discards the in-flight attempt, if any. A response arriving
// for an abandoned attempt must not clear the cart or change state, so
// each attempt carries a token that Abandon invalidates.
func (p *Pipeline) Abandon() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.attempt++
	p.state = StateIdle
}

// Submit validates the current cart against the form and, if valid,
// performs exactly one creator call. A submit while another attempt is
// in flight returns ErrSubmitInFlight without touching anything.
// Validation failures make no creator call and leave the cart intact.
func (p *Pipeline) Submit(ctx context.Context, form FormData) (*models.Order, error) {
	p.mu.Lock()
	if p.state == StateSubmitting {
		p.mu.Unlock()
		return nil, ErrSubmitInFlight
	}

	items := p.cart.Items()
	if verr := Validate(items, form); verr != nil {
		// No attempt was made; the pipeline stays ready.
		p.state = StateIdle
		p.mu.Unlock()
		util.CheckoutSubmissionsTotal.WithLabelValues("invalid").Inc()
		return nil, verr
	}

	p.state = StateSubmitting
	p.attempt++
	token := p.attempt
	p.mu.Unlock()

	start := time.Now()
	order, err := p.creator.CreateOrder(ctx, &CreateOrderRequest{
		FormData: form,
		Items:    items,
		Subtotal: Subtotal(items),
	})
	util.CheckoutLatency.Observe(time.Since(start).Seconds())

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.attempt != token {
		// The user navigated away mid-flight; whatever came back must
		// not mutate local state.
		p.logger.Info("Discarding stale checkout response")
		util.CheckoutSubmissionsTotal.WithLabelValues("abandoned").Inc()
		return nil, ErrSubmissionAbandoned
	}

	if err != nil {
		p.state = StateFailed
		p.logger.Warn("Checkout submission failed", zap.Error(err))
		util.CheckoutSubmissionsTotal.WithLabelValues("failed").Inc()
		return nil, &TransportError{Err: err}
	}

	// Only a confirmed write empties the cart.
	if cerr := p.cart.Clear(ctx); cerr != nil {
		p.logger.Error("Order persisted but cart clear failed",
			zap.String("order_id", order.ID),
			zap.Error(cerr))
	}
	p.state = StateSucceeded

	util.CheckoutSubmissionsTotal.WithLabelValues("succeeded").Inc()
	p.logger.Info("Checkout succeeded",
		zap.String("order_id", order.ID),
		zap.String("total", order.Total.String()))
	return order, nil
}
