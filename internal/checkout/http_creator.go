package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-service/internal/models"
)

// HTTPCreator posts submissions to a remote order creation endpoint.
// Deployments that embed the order service in the same process use it
// directly; this client exists for split storefront/admin deployments.
type HTTPCreator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCreator builds a creator for the given service base URL.
func NewHTTPCreator(baseURL string) *HTTPCreator {
	return &HTTPCreator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateOrder posts the submission to POST {base}/api/v1/orders. Any
// non-2xx status is a delivery failure; the caller decides what to do
// with the cart.
func (c *HTTPCreator) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*models.Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("order endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("order endpoint returned %d: %s", resp.StatusCode, payload)
	}

	var order models.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	return &order, nil
}
