// Package cart implements the per-session cart engine: the single source
// of truth for what a visitor intends to buy, persisted to a durable slot
// after every mutation.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storefront-service/internal/cartslot"
	"storefront-service/internal/models"
	"storefront-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrUnknownOption   = errors.New("price option does not belong to product")
)

// Engine holds one session's cart. A single mutex guards every
// read-modify-write-persist sequence, which is what keeps the
// one-line-per-(product, weight) invariant intact.
type Engine struct {
	mu     sync.Mutex
	slot   cartslot.Slot
	items  []models.CartLineItem
	open   bool
	logger *zap.Logger
}

// New builds an engine over the given slot and rehydrates any previously
// persisted cart. A slot that cannot be read or parsed never fails
// construction: the engine logs and starts empty instead.
func New(ctx context.Context, slot cartslot.Slot, logger *zap.Logger) *Engine {
	e := &Engine{
		slot:   slot,
		logger: logger,
	}

	data, ok, err := slot.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load cart slot, starting empty", zap.Error(err))
		util.CartRestoresFailed.Inc()
		return e
	}
	if !ok {
		return e
	}

	var items []models.CartLineItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("Discarding unparsable cart slot", zap.Error(err))
		util.CartRestoresFailed.Inc()
		return e
	}

	e.items = items
	return e
}

// AddItem puts quantity units of the product's given weight option into
// the cart. The option is resolved from the product itself, so a label
// the product does not offer is rejected rather than priced at zero.
// Adding an existing (product, weight) combination increments its
// quantity; the line keeps the price it was first added at.
func (e *Engine) AddItem(ctx context.Context, product *models.Product, weightLabel string, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	option, ok := product.Option(weightLabel)
	if !ok {
		return fmt.Errorf("%w: product %s, weight %q", ErrUnknownOption, product.ID, weightLabel)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	merged := false
	for i := range e.items {
		if e.items[i].ProductID == product.ID && e.items[i].Option.WeightLabel == weightLabel {
			e.items[i].Quantity += quantity
			merged = true
			break
		}
	}

	if !merged {
		e.items = append(e.items, models.CartLineItem{
			ProductID: product.ID,
			Name:      product.Name,
			Brand:     product.Brand,
			Image:     product.Image,
			Option:    option,
			Quantity:  quantity,
		})
	}

	// Presentation signal: the storefront pops the cart drawer open
	// whenever something is added.
	e.open = true

	util.CartMutationsTotal.WithLabelValues("add").Inc()
	return e.persistLocked(ctx)
}

// RemoveItem removes the matching line item. Removing an absent
// combination is a no-op.
func (e *Engine) RemoveItem(ctx context.Context, productID, weightLabel string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.removeLocked(ctx, productID, weightLabel)
}

// UpdateQuantity sets the line's quantity to an absolute value. A
// quantity of zero or less removes the line, matching RemoveItem exactly.
func (e *Engine) UpdateQuantity(ctx context.Context, productID, weightLabel string, quantity int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if quantity <= 0 {
		return e.removeLocked(ctx, productID, weightLabel)
	}

	for i := range e.items {
		if e.items[i].ProductID == productID && e.items[i].Option.WeightLabel == weightLabel {
			e.items[i].Quantity = quantity
			break
		}
	}

	util.CartMutationsTotal.WithLabelValues("update").Inc()
	return e.persistLocked(ctx)
}

// Clear empties the cart and erases the persisted slot.
func (e *Engine) Clear(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.items = nil
	e.open = false

	util.CartMutationsTotal.WithLabelValues("clear").Inc()
	if err := e.slot.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear cart slot: %w", err)
	}
	return nil
}

// Items returns a copy of the current line items in insertion order.
func (e *Engine) Items() []models.CartLineItem {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]models.CartLineItem, len(e.items))
	copy(items, e.items)
	return items
}

// Subtotal is recomputed from the line items on every call so it can
// never drift from edits.
func (e *Engine) Subtotal() decimal.Decimal {
	e.mu.Lock()
	defer e.mu.Unlock()

	total := decimal.Zero
	for _, item := range e.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// TotalItemCount is the sum of quantities over all line items.
func (e *Engine) TotalItemCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	count := 0
	for _, item := range e.items {
		count += item.Quantity
	}
	return count
}

// Open reports whether the cart drawer should be shown.
func (e *Engine) Open() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// SetOpen sets the cart drawer visibility flag.
func (e *Engine) SetOpen(open bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open = open
}

func (e *Engine) removeLocked(ctx context.Context, productID, weightLabel string) error {
	kept := e.items[:0]
	for _, item := range e.items {
		if item.ProductID == productID && item.Option.WeightLabel == weightLabel {
			continue
		}
		kept = append(kept, item)
	}
	e.items = kept

	util.CartMutationsTotal.WithLabelValues("remove").Inc()
	return e.persistLocked(ctx)
}

func (e *Engine) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(e.items)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := e.slot.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
