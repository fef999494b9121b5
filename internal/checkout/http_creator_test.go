package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPCreatorPostsSubmission(t *testing.T) {
	var gotMethod, gotPath, gotContentType string
	var gotReq CreateOrderRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.Order{
			ID:          "order-9",
			Subtotal:    decimal.RequireFromString("16.00"),
			Total:       decimal.RequireFromString("16.00"),
			OrderStatus: models.OrderStatusPending,
		})
	}))
	defer srv.Close()

	creator := NewHTTPCreator(srv.URL)
	items := []models.CartLineItem{lineItem("p1", "250g", "8.00", 2)}

	order, err := creator.CreateOrder(context.Background(), &CreateOrderRequest{
		FormData: validForm(),
		Items:    items,
		Subtotal: Subtotal(items),
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/v1/orders", gotPath)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "Ana Morales", gotReq.FormData.Client.Name)
	require.Len(t, gotReq.Items, 1)
	assert.Equal(t, "16.00", gotReq.Subtotal.StringFixed(2))

	assert.Equal(t, "order-9", order.ID)
	assert.Equal(t, models.OrderStatusPending, order.OrderStatus)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("16.00")))
}

func TestHTTPCreatorNonSuccessStatusIsDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"database unavailable"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	creator := NewHTTPCreator(srv.URL)
	items := []models.CartLineItem{lineItem("p1", "250g", "8.00", 1)}

	order, err := creator.CreateOrder(context.Background(), &CreateOrderRequest{
		FormData: validForm(),
		Items:    items,
		Subtotal: Subtotal(items),
	})
	require.Error(t, err)
	assert.Nil(t, order)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestHTTPCreatorUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	creator := NewHTTPCreator(srv.URL)
	items := []models.CartLineItem{lineItem("p1", "250g", "8.00", 1)}

	_, err := creator.CreateOrder(context.Background(), &CreateOrderRequest{
		FormData: validForm(),
		Items:    items,
		Subtotal: Subtotal(items),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
}
