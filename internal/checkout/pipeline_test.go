package checkout

import (
	"context"
	"errors"
	"testing"

	"storefront-service/internal/cart"
	"storefront-service/internal/cartslot"
	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCreator struct {
	calls  int
	err    error
	during func() // runs while the attempt is in flight
}

func (f *fakeCreator) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	f.calls++
	if f.during != nil {
		f.during()
	}
	if f.err != nil {
		return nil, f.err
	}
	subtotal := Subtotal(req.Items)
	return &models.Order{
		ID:       "order-1",
		Items:    req.Items,
		Subtotal: subtotal,
		Total:    subtotal,
	}, nil
}

func filledCart(t *testing.T) *cart.Engine {
	t.Helper()
	ctx := context.Background()
	engine := cart.New(ctx, cartslot.NewMemorySlot(), zap.NewNop())

	p := &models.Product{
		ID:   "p1",
		Name: "Geisha Natural",
		Details: models.ProductDetails{
			PriceOptions: []models.PriceOption{
				{WeightLabel: "250g", UnitPrice: decimal.RequireFromString("8.00")},
			},
		},
	}
	require.NoError(t, engine.AddItem(ctx, p, "250g", 2))
	return engine
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	engine := filledCart(t)
	creator := &fakeCreator{}
	pipeline := NewPipeline(engine, creator, zap.NewNop())

	order, err := pipeline.Submit(context.Background(), validForm())
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, 1, creator.calls)
	assert.Equal(t, 0, engine.TotalItemCount())
	assert.Equal(t, StateSucceeded, pipeline.State())
}

func TestSubmitTransportFailurePreservesCart(t *testing.T) {
	engine := filledCart(t)
	creator := &fakeCreator{err: errors.New("connection refused")}
	pipeline := NewPipeline(engine, creator, zap.NewNop())

	before := engine.TotalItemCount()
	_, err := pipeline.Submit(context.Background(), validForm())

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, before, engine.TotalItemCount())
	assert.Equal(t, StateFailed, pipeline.State())

	// Retry is a fresh user-initiated submit.
	creator.err = nil
	_, err = pipeline.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, 2, creator.calls)
	assert.Equal(t, 0, engine.TotalItemCount())
}

func TestSubmitValidationFailureMakesNoCall(t *testing.T) {
	engine := filledCart(t)
	creator := &fakeCreator{}
	pipeline := NewPipeline(engine, creator, zap.NewNop())

	form := validForm()
	form.Client.Email = ""

	_, err := pipeline.Submit(context.Background(), form)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, 0, creator.calls)
	assert.Equal(t, 2, engine.TotalItemCount())
	assert.Equal(t, StateIdle, pipeline.State())
}

func TestSubmitEmptyCartMakesNoCall(t *testing.T) {
	engine := cart.New(context.Background(), cartslot.NewMemorySlot(), zap.NewNop())
	creator := &fakeCreator{}
	pipeline := NewPipeline(engine, creator, zap.NewNop())

	_, err := pipeline.Submit(context.Background(), validForm())
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "items")
	assert.Equal(t, 0, creator.calls)
}

func TestDoubleSubmitMakesOneCall(t *testing.T) {
	engine := filledCart(t)
	creator := &fakeCreator{}
	pipeline := NewPipeline(engine, creator, zap.NewNop())

	var reentrantErr error
	creator.during = func() {
		// Second submit arrives while the first is still in flight.
		_, reentrantErr = pipeline.Submit(context.Background(), validForm())
	}

	_, err := pipeline.Submit(context.Background(), validForm())
	require.NoError(t, err)

	assert.ErrorIs(t, reentrantErr, ErrSubmitInFlight)
	assert.Equal(t, 1, creator.calls)
}

func TestAbandonDiscardsLateResponse(t *testing.T) {
	engine := filledCart(t)
	creator := &fakeCreator{}
	pipeline := NewPipeline(engine, creator, zap.NewNop())

	creator.during = func() {
		pipeline.Abandon()
	}

	_, err := pipeline.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, ErrSubmissionAbandoned)

	// The late success must not have cleared the cart or changed state.
	assert.Equal(t, 2, engine.TotalItemCount())
	assert.Equal(t, StateIdle, pipeline.State())
}

func TestStateIsTerminal(t *testing.T) {
	assert.False(t, StateIdle.IsTerminal())
	assert.False(t, StateSubmitting.IsTerminal())
	assert.True(t, StateSucceeded.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
}
