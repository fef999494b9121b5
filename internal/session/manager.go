// Package session hands out per-session cart engines and checkout
// pipelines. One visitor session maps to exactly one engine instance
// for the lifetime of the process, so every request for a session sees
// the same cart.
package session

import (
	"context"
	"sync"

	"storefront-service/internal/cart"
	"storefront-service/internal/cartslot"
	"storefront-service/internal/checkout"

	"go.uber.org/zap"
)

// SlotFactory builds the durable slot backing one session's cart.
type SlotFactory func(sessionID string) cartslot.Slot

// Manager owns the session-to-engine mapping.
type Manager struct {
	mu        sync.Mutex
	slots     SlotFactory
	creator   checkout.OrderCreator
	logger    *zap.Logger
	engines   map[string]*cart.Engine
	pipelines map[string]*checkout.Pipeline
}

// NewManager creates a session manager.
func NewManager(slots SlotFactory, creator checkout.OrderCreator, logger *zap.Logger) *Manager {
	return &Manager{
		slots:     slots,
		creator:   creator,
		logger:    logger,
		engines:   make(map[string]*cart.Engine),
		pipelines: make(map[string]*checkout.Pipeline),
	}
}

// Cart returns the session's cart engine, rehydrating it from its slot
// on first use.
func (m *Manager) Cart(ctx context.Context, sessionID string) *cart.Engine {
	m.mu.Lock()
	defer m.mu.Unlock()

	if engine, ok := m.engines[sessionID]; ok {
		return engine
	}

	engine := cart.New(ctx, m.slots(sessionID), m.logger)
	m.engines[sessionID] = engine
	return engine
}

// Pipeline returns the session's checkout pipeline, bound to the same
// cart engine Cart returns.
func (m *Manager) Pipeline(ctx context.Context, sessionID string) *checkout.Pipeline {
	engine := m.Cart(ctx, sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if pipeline, ok := m.pipelines[sessionID]; ok {
		return pipeline
	}

	pipeline := checkout.NewPipeline(engine, m.creator, m.logger)
	m.pipelines[sessionID] = pipeline
	return pipeline
}

// Drop forgets a session's engine and pipeline. The durable slot is left
// alone; a returning visitor rehydrates from it.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.engines, sessionID)
	delete(m.pipelines, sessionID)
}
