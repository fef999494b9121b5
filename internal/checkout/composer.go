// Package checkout turns a cart plus a contact form into a persisted
// order: the composer builds the immutable snapshot, the pipeline
// delivers it and reconciles the cart with the outcome.
package checkout

import (
	"time"

	"storefront-service/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FormData is the contact and shipping form captured at checkout.
type FormData struct {
	Client  models.ClientInfo `json:"client"`
	Address models.Address    `json:"address"`
	Notes   string            `json:"notes,omitempty"`
}

// CreateOrderRequest is the wire shape of the order creation endpoint.
// Subtotal is advisory: the server always recomputes it from the items
// and never trusts the client's arithmetic.
type CreateOrderRequest struct {
	FormData FormData              `json:"formData"`
	Items    []models.CartLineItem `json:"items"`
	Subtotal decimal.Decimal       `json:"subtotal"`
}

// IDGenerator supplies order ids. The default is a v4 UUID, which
// carries 122 bits of randomness.
type IDGenerator func() string

// Clock supplies composition timestamps.
type Clock func() time.Time

// Composer produces immutable order snapshots. Id generation and the
// clock are injectable so tests get deterministic snapshots.
type Composer struct {
	ids   IDGenerator
	clock Clock
}

// NewComposer returns a composer with production id and time sources.
func NewComposer() *Composer {
	return &Composer{
		ids:   func() string { return uuid.New().String() },
		clock: time.Now,
	}
}

// NewComposerWith returns a composer with explicit providers.
func NewComposerWith(ids IDGenerator, clock Clock) *Composer {
	return &Composer{ids: ids, clock: clock}
}

// Validate checks a submission without composing: the cart must be
// non-empty and every contact and address field present. Returns nil
// when the submission is valid.
func Validate(items []models.CartLineItem, form FormData) *ValidationError {
	var missing []string

	if len(items) == 0 {
		missing = append(missing, "items")
	}
	for _, f := range []struct{ name, value string }{
		{"client.name", form.Client.Name},
		{"client.email", form.Client.Email},
		{"client.phone", form.Client.Phone},
		{"address.street", form.Address.Street},
		{"address.city", form.Address.City},
		{"address.state", form.Address.State},
		{"address.zipCode", form.Address.ZipCode},
		{"address.country", form.Address.Country},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}

	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Compose validates the submission and returns a fully populated order
// snapshot: fresh id, composition timestamp, deep-copied items, subtotal
// fixed at submission time, status pending and payment unpaid. It
// performs no writes; persistence belongs to the caller.
func (c *Composer) Compose(items []models.CartLineItem, form FormData) (*models.Order, error) {
	if verr := Validate(items, form); verr != nil {
		return nil, verr
	}

	subtotal := Subtotal(items)
	now := c.clock()

	order := &models.Order{
		ID:          c.ids(),
		CreatedAt:   now,
		Items:       copyItems(items),
		Subtotal:    subtotal,
		Total:       subtotal, // no tax or shipping charges
		Client:      form.Client,
		Address:     form.Address,
		Notes:       form.Notes,
		OrderStatus: models.OrderStatusPending,
		Payment: models.PaymentInfo{
			Method:    models.PaymentMethodUnpaid,
			PayerName: form.Client.Name,
			Status:    models.PaymentStatusPending,
		},
	}
	return order, nil
}

// Subtotal sums unit price times quantity over the line items, rounded
// half-up to two decimal places for currency.
func Subtotal(items []models.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

func copyItems(items []models.CartLineItem) models.LineItems {
	cp := make(models.LineItems, len(items))
	copy(cp, items)
	return cp
}
