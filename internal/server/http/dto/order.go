package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatusUpdateRequest is the back-office status picker payload.
type StatusUpdateRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

// LineItemResponse is one product row.
type LineItemResponse struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Discount  decimal.Decimal `json:"discount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// ControlResponse is a UI control the client renders as is.
type ControlResponse struct {
	Visible bool `json:"visible"`
	Enabled bool `json:"enabled"`
}

// ActionsResponse lists customer controls.
type ActionsResponse struct {
	MarkReceived ControlResponse `json:"markReceived"`
}

// StepResponse is one timeline node.
type StepResponse struct {
	Status  string `json:"status"`
	Rank    int    `json:"rank"`
	Reached bool   `json:"reached"`
	Current bool   `json:"current"`
}

// TargetResponse is one entry of the status picker.
type TargetResponse struct {
	Status  string `json:"status"`
	Enabled bool   `json:"enabled"`
}

// OrderResponse is an order decorated for rendering.
type OrderResponse struct {
	ID            string             `json:"id"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"paymentMethod"`
	IsPaid        bool               `json:"isPaid"`
	PaidAt        *time.Time         `json:"paidAt,omitempty"`
	ItemsPrice    decimal.Decimal    `json:"itemsPrice"`
	ShippingPrice decimal.Decimal    `json:"shippingPrice"`
	TotalPrice    decimal.Decimal    `json:"totalPrice"`
	Items         []LineItemResponse `json:"items,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	PaymentLabel  string             `json:"paymentLabel"`
	Actions       ActionsResponse    `json:"actions"`
	Timeline      []StepResponse     `json:"timeline"`
	Targets       []TargetResponse   `json:"targets,omitempty"`
}

// OrderSummaryResponse is a row of a status tab.
type OrderSummaryResponse struct {
	ID           string          `json:"id"`
	Status       string          `json:"status"`
	IsPaid       bool            `json:"isPaid"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
	PaymentLabel string          `json:"paymentLabel"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// TransitionResponse is the confirmed order plus the refreshed tabs it moved between.
type TransitionResponse struct {
	Message string                            `json:"message"`
	Order   OrderResponse                     `json:"order"`
	Tabs    map[string][]OrderSummaryResponse `json:"tabs"`
}
