package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-service/internal/cart"
	"storefront-service/internal/cartslot"
	"storefront-service/internal/checkout"
	"storefront-service/internal/models"
	"storefront-service/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCreator struct {
	calls  int
	during func() // runs while the attempt is in flight
}

func (s *stubCreator) CreateOrder(ctx context.Context, req *checkout.CreateOrderRequest) (*models.Order, error) {
	s.calls++
	if s.during != nil {
		s.during()
	}
	subtotal := checkout.Subtotal(req.Items)
	return &models.Order{
		ID:          "order-1",
		Items:       req.Items,
		Subtotal:    subtotal,
		Total:       subtotal,
		OrderStatus: models.OrderStatusPending,
	}, nil
}

func sharedMemorySlots() session.SlotFactory {
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

func checkoutRouter(t *testing.T, creator checkout.OrderCreator) (*gin.Engine, *session.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sessions := session.NewManager(sharedMemorySlots(), creator, zap.NewNop())
	router := gin.New()
	NewHandler(nil, nil, sessions).SetupRoutes(router)
	return router, sessions
}

func fillSessionCart(t *testing.T, sessions *session.Manager, sessionID string) *cart.Engine {
	t.Helper()
	ctx := context.Background()

	p := &models.Product{
		ID:   "p1",
		Name: "Geisha Natural",
		Details: models.ProductDetails{
			PriceOptions: []models.PriceOption{
				{WeightLabel: "250g", UnitPrice: decimal.RequireFromString("8.00")},
			},
		},
	}

	engine := sessions.Cart(ctx, sessionID)
	require.NoError(t, engine.AddItem(ctx, p, "250g", 2))
	return engine
}

func checkoutBody(t *testing.T) *bytes.Reader {
	t.Helper()
	form := checkout.FormData{
		Client: models.ClientInfo{
			Name:  "Ana Morales",
			Email: "ana@example.com",
			Phone: "+507 6000-0000",
		},
		Address: models.Address{
			Street:  "Calle 50",
			City:    "Panama",
			State:   "Panama",
			ZipCode: "0801",
			Country: "PA",
		},
	}
	body, err := json.Marshal(form)
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestSubmitCheckoutSucceeds(t *testing.T) {
	creator := &stubCreator{}
	router, sessions := checkoutRouter(t, creator)
	fillSessionCart(t, sessions, "sess-1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/sess-1/checkout", checkoutBody(t))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 1, creator.calls)

	var order models.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, "16.00", order.Subtotal.StringFixed(2))
}

func TestSubmitCheckoutAbandonedMidFlightIsConflict(t *testing.T) {
	creator := &stubCreator{}
	router, sessions := checkoutRouter(t, creator)
	fillSessionCart(t, sessions, "sess-1")

	// The visitor navigates away while the submission is in flight.
	pipeline := sessions.Pipeline(context.Background(), "sess-1")
	creator.during = pipeline.Abandon

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/sess-1/checkout", checkoutBody(t))
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	// The late result must not have cleared the cart.
	assert.Equal(t, 2, sessions.Cart(context.Background(), "sess-1").TotalItemCount())
}

func TestSubmitCheckoutReleasesSession(t *testing.T) {
	creator := &stubCreator{}
	router, sessions := checkoutRouter(t, creator)
	engine := fillSessionCart(t, sessions, "sess-1")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/sess-1/checkout", checkoutBody(t))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// The session's in-memory pair is released after checkout; the next
	// request builds a fresh engine from the (now empty) slot.
	rehydrated := sessions.Cart(context.Background(), "sess-1")
	assert.NotSame(t, engine, rehydrated)
	assert.Equal(t, 0, rehydrated.TotalItemCount())
}
