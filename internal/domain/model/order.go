package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
)

// OrderStatus describes fulfilment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipping   OrderStatus = "shipping"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusReceived   OrderStatus = "received"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// happyPath lists statuses in normal progression order; the index is the rank.
var happyPath = [...]OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipping,
	OrderStatusDelivered,
	OrderStatusReceived,
}

// HappyPath returns the forward progression of statuses, pending first.
func HappyPath() []OrderStatus {
	out := make([]OrderStatus, len(happyPath))
	copy(out, happyPath[:])
	return out
}

// OrderStatuses returns every status of the enumeration, cancelled last.
func OrderStatuses() []OrderStatus {
	return append(HappyPath(), OrderStatusCancelled)
}

// ParseOrderStatus validates raw wire value against the enumeration.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", domainErrors.ErrInvalidStatus, raw)
	}
	return s, nil
}

// Valid reports whether status belongs to the enumeration.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing, OrderStatusShipping,
		OrderStatusDelivered, OrderStatusReceived, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Rank returns position on the happy path. Cancelled has no rank.
func (s OrderStatus) Rank() (int, bool) {
	for i, st := range happyPath {
		if st == s {
			return i, true
		}
	}
	return 0, false
}

func (s OrderStatus) String() string { return string(s) }

// PaymentMethod identifies how the customer pays.
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodPayPal PaymentMethod = "paypal"
)

// IsCashOnDelivery reports whether payment is collected by the courier.
func (m PaymentMethod) IsCashOnDelivery() bool {
	return strings.EqualFold(string(m), string(PaymentMethodCOD))
}

// LineItem is a single product row of an order.
type LineItem struct {
	ProductID string
	Name      string
	Image     string
	Quantity  int
	Price     decimal.Decimal
	// Discount is a percentage in the range 0..100.
	Discount decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Subtotal returns price*quantity with the line discount applied.
func (li LineItem) Subtotal() decimal.Decimal {
	gross := li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
	if li.Discount.IsZero() {
		return gross
	}
	return gross.Mul(hundred.Sub(li.Discount)).Div(hundred)
}

// Order mirrors the shop API order record.
type Order struct {
	ID            string
	Status        OrderStatus
	PaymentMethod PaymentMethod
	IsPaid        bool
	PaidAt        *time.Time
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TotalPrice    decimal.Decimal
	Items         []LineItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderView is the locally cached read copy of an order for one session.
type OrderView struct {
	SessionID     string
	OrderID       string
	Status        OrderStatus
	PaymentMethod PaymentMethod
	IsPaid        bool
	TotalPrice    decimal.Decimal
	UpdatedAt     time.Time
}

// ViewOf builds the cached view of order for the session.
func ViewOf(sessionID string, o Order) OrderView {
	return OrderView{
		SessionID:     sessionID,
		OrderID:       o.ID,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		IsPaid:        o.IsPaid,
		TotalPrice:    o.TotalPrice,
	}
}
