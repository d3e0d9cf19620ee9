package shopapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/session"
)

// Doer sends a request on behalf of a session, attaching its credential.
type Doer interface {
	Do(ctx context.Context, h *session.Handle, req *http.Request) (*http.Response, error)
}

type lineItemDTO struct {
	Product  string          `json:"product"`
	Name     string          `json:"name"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Discount decimal.Decimal `json:"discount"`
}

type orderDTO struct {
	ID            string          `json:"_id"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	IsPaid        bool            `json:"isPaid"`
	PaidAt        *time.Time      `json:"paidAt"`
	ItemsPrice    decimal.Decimal `json:"itemsPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	Items         []lineItemDTO   `json:"orderItems"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (o orderDTO) toModel() (model.Order, error) {
	status, err := model.ParseOrderStatus(o.Status)
	if err != nil {
		return model.Order{}, fmt.Errorf("order %s: %w", o.ID, err)
	}
	items := make([]model.LineItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, model.LineItem{
			ProductID: it.Product,
			Name:      it.Name,
			Image:     it.Image,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Discount:  it.Discount,
		})
	}
	return model.Order{
		ID:            o.ID,
		Status:        status,
		PaymentMethod: model.PaymentMethod(o.PaymentMethod),
		IsPaid:        o.IsPaid,
		PaidAt:        o.PaidAt,
		ItemsPrice:    o.ItemsPrice,
		ShippingPrice: o.ShippingPrice,
		TotalPrice:    o.TotalPrice,
		Items:         items,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}, nil
}

// Client calls order endpoints through the authenticated gateway.
type Client struct {
	base
	doer Doer
}

// NewClient creates the order endpoint client.
func NewClient(baseURL string, doer Doer, logger *slog.Logger) (*Client, error) {
	b, err := newBase(baseURL, logger)
	if err != nil {
		return nil, err
	}
	return &Client{base: b, doer: doer}, nil
}

func (c *Client) call(ctx context.Context, h *session.Handle, req *http.Request, out any) error {
	resp, err := c.doer.Do(ctx, h, req)
	if err != nil {
		return transportError(err)
	}
	return c.decode(resp, out)
}

func statusQuery(status model.OrderStatus) url.Values {
	if status == "" {
		return nil
	}
	return url.Values{"status": []string{string(status)}}
}

func (c *Client) list(ctx context.Context, h *session.Handle, status model.OrderStatus, segments ...string) ([]model.Order, error) {
	req, err := c.newRequest(ctx, http.MethodGet, statusQuery(status), nil, segments...)
	if err != nil {
		return nil, err
	}
	var data []orderDTO
	if err := c.call(ctx, h, req, &data); err != nil {
		return nil, err
	}
	orders := make([]model.Order, 0, len(data))
	for _, dto := range data {
		o, err := dto.toModel()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// MyOrders lists the customer's own orders; empty status lists all.
func (c *Client) MyOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]model.Order, error) {
	return c.list(ctx, h, status, "orders", "my-order")
}

// AllOrders lists every order for the back-office.
func (c *Client) AllOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]model.Order, error) {
	return c.list(ctx, h, status, "orders", "list")
}

func (c *Client) single(ctx context.Context, h *session.Handle, method string, body any, segments ...string) (*model.Order, error) {
	req, err := c.newRequest(ctx, method, nil, body, segments...)
	if err != nil {
		return nil, err
	}
	var data orderDTO
	if err := c.call(ctx, h, req, &data); err != nil {
		return nil, err
	}
	o, err := data.toModel()
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// OrderDetails fetches a single order.
func (c *Client) OrderDetails(ctx context.Context, h *session.Handle, id string) (*model.Order, error) {
	return c.single(ctx, h, http.MethodGet, nil, "orders", "details", id)
}

// UpdateOrderStatus asks the shop API to move the order to status and returns the
// order as confirmed by the server.
func (c *Client) UpdateOrderStatus(ctx context.Context, h *session.Handle, id string, status model.OrderStatus) (*model.Order, error) {
	o, err := c.single(ctx, h, http.MethodPut, map[string]string{"status": string(status)}, "orders", "update-status", id)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnprocessableEntity) {
			return nil, fmt.Errorf("%w: %w", domainErrors.ErrTransitionRejected, err)
		}
		return nil, err
	}
	return o, nil
}

// DeleteOrder removes an order.
func (c *Client) DeleteOrder(ctx context.Context, h *session.Handle, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, nil, nil, "orders", "delete", id)
	if err != nil {
		return err
	}
	return c.call(ctx, h, req, nil)
}
