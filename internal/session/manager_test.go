package session

import (
	"context"
	"testing"

	"storefront-service/internal/cartslot"
	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memorySlots() SlotFactory {
	slots := map[string]*cartslot.MemorySlot{}
	return func(sessionID string) cartslot.Slot {
		if slot, ok := slots[sessionID]; ok {
			return slot
		}
		slot := cartslot.NewMemorySlot()
		slots[sessionID] = slot
		return slot
	}
}

func TestSameSessionGetsSameEngine(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memorySlots(), nil, zap.NewNop())

	a := m.Cart(ctx, "sess-1")
	b := m.Cart(ctx, "sess-1")
	assert.Same(t, a, b)
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memorySlots(), nil, zap.NewNop())

	p := &models.Product{
		ID: "p1",
		Details: models.ProductDetails{
			PriceOptions: []models.PriceOption{
				{WeightLabel: "250g", UnitPrice: decimal.RequireFromString("8.00")},
			},
		},
	}

	require.NoError(t, m.Cart(ctx, "sess-1").AddItem(ctx, p, "250g", 3))

	assert.Equal(t, 3, m.Cart(ctx, "sess-1").TotalItemCount())
	assert.Equal(t, 0, m.Cart(ctx, "sess-2").TotalItemCount())
}

func TestDroppedSessionRehydratesFromSlot(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memorySlots(), nil, zap.NewNop())

	p := &models.Product{
		ID: "p1",
		Details: models.ProductDetails{
			PriceOptions: []models.PriceOption{
				{WeightLabel: "250g", UnitPrice: decimal.RequireFromString("8.00")},
			},
		},
	}

	require.NoError(t, m.Cart(ctx, "sess-1").AddItem(ctx, p, "250g", 2))
	m.Drop("sess-1")

	// A fresh engine for the same session loads the persisted cart.
	assert.Equal(t, 2, m.Cart(ctx, "sess-1").TotalItemCount())
}

func TestPipelineBoundToSessionCart(t *testing.T) {
	ctx := context.Background()
	m := NewManager(memorySlots(), nil, zap.NewNop())

	a := m.Pipeline(ctx, "sess-1")
	b := m.Pipeline(ctx, "sess-1")
	assert.Same(t, a, b)
	assert.NotSame(t, a, m.Pipeline(ctx, "sess-2"))
}
