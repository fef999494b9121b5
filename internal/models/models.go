package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceOption is a named package size mapped to a unit price.
type PriceOption struct {
	WeightLabel string          `json:"weightLabel"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// ProductDetails holds the roastery metadata attached to a product.
// Price options live here because they belong to the coffee listing,
// not to the base catalog row.
type ProductDetails struct {
	FlavorNotes      []string      `json:"flavorNotes,omitempty"`
	RoastLevel       string        `json:"roastLevel,omitempty"`
	ProcessingMethod string        `json:"processingMethod,omitempty"`
	Variety          string        `json:"variety,omitempty"`
	Region           string        `json:"region,omitempty"`
	Altitude         string        `json:"altitude,omitempty"`
	GrindSizes       []string      `json:"grindSizes,omitempty"`
	PriceOptions     []PriceOption `json:"priceOptions,omitempty"`
}

// Product represents a catalog product
type Product struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Brand       string         `db:"brand" json:"brand"`
	Category    string         `db:"category" json:"category"`
	Description string         `db:"description" json:"description"`
	Image       string         `db:"image" json:"image"`
	Active      bool           `db:"active" json:"active"`
	Details     ProductDetails `db:"details" json:"details"`
}

// Option returns the price option with the given weight label, if the
// product offers one.
func (p *Product) Option(weightLabel string) (PriceOption, bool) {
	for _, opt := range p.Details.PriceOptions {
		if opt.WeightLabel == weightLabel {
			return opt, true
		}
	}
	return PriceOption{}, false
}

// CartLineItem is one (product, chosen price option, quantity) tuple in a
// cart. Display fields are denormalized so the cart renders without a
// catalog lookup and order snapshots stay stable after catalog edits.
type CartLineItem struct {
	ProductID string      `json:"product_id"`
	Name      string      `json:"name"`
	Brand     string      `json:"brand"`
	Image     string      `json:"image"`
	Option    PriceOption `json:"option"`
	Quantity  int         `json:"quantity"`
}

// LineTotal is the option unit price multiplied by quantity.
func (li CartLineItem) LineTotal() decimal.Decimal {
	return li.Option.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// ClientInfo holds checkout contact details.
type ClientInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Address holds checkout shipping details.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// PaymentInfo tracks settlement of an order. Payment is collected
// out-of-band, so new orders always start unpaid.
type PaymentInfo struct {
	Method    string     `json:"method"`
	PayerName string     `json:"payerName"`
	Status    string     `json:"status"`
	Date      *time.Time `json:"date,omitempty"`
}

// Order is an immutable snapshot of a cart at submission time. Only
// order_status, payment, courier, tracking_number and updated_at may
// change after creation.
type Order struct {
	ID             string          `db:"id" json:"id"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      *time.Time      `db:"updated_at" json:"updated_at,omitempty"`
	Items          LineItems       `db:"items" json:"items"`
	Subtotal       decimal.Decimal `db:"subtotal" json:"subtotal"`
	Total          decimal.Decimal `db:"total" json:"total"`
	Client         ClientInfo      `db:"client" json:"client"`
	Address        Address         `db:"address" json:"address"`
	Notes          string          `db:"notes" json:"notes,omitempty"`
	OrderStatus    string          `db:"order_status" json:"order_status"`
	Payment        PaymentInfo     `db:"payment" json:"payment"`
	Courier        *string         `db:"courier" json:"courier"`
	TrackingNumber *string         `db:"tracking_number" json:"tracking_number"`
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusCancelled = "cancelled"
)

// Payment statuses, plus the initial method for unsettled orders
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"

	PaymentMethodUnpaid = "unpaid"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCancelled:
		return true
	}
	return false
}

// LineItems is stored as a JSONB column.
type LineItems []CartLineItem

func (l LineItems) Value() (driver.Value, error) {
	return json.Marshal(l)
}

func (l *LineItems) Scan(src interface{}) error {
	return scanJSON(src, l)
}

func (d ProductDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *ProductDetails) Scan(src interface{}) error {
	return scanJSON(src, d)
}

func (c ClientInfo) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *ClientInfo) Scan(src interface{}) error {
	return scanJSON(src, c)
}

func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *Address) Scan(src interface{}) error {
	return scanJSON(src, a)
}

func (p PaymentInfo) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *PaymentInfo) Scan(src interface{}) error {
	return scanJSON(src, p)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// ProcessedEvent records a consumed broker event for idempotency.
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
