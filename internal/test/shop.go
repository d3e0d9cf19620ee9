package test

import (
	"context"
	"sort"
	"sync"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/session"
)

// ShopStub is an in-memory system of record for orders. It accepts any status
// update unless UpdateErr is set.
type ShopStub struct {
	mu        sync.Mutex
	Orders    map[string]model.Order
	UpdateErr error
	DetailErr error
	ListErr   error
	Updates   []model.OrderStatus
	Lists     []model.OrderStatus
}

// NewShopStub seeds the stub with orders.
func NewShopStub(orders ...model.Order) *ShopStub {
	s := &ShopStub{Orders: make(map[string]model.Order)}
	for _, o := range orders {
		s.Orders[o.ID] = o
	}
	return s
}

func (s *ShopStub) list(status model.OrderStatus) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Lists = append(s.Lists, status)
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var out []model.Order
	for _, o := range s.Orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MyOrders lists orders filtered by status.
func (s *ShopStub) MyOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]model.Order, error) {
	return s.list(status)
}

// AllOrders lists orders filtered by status.
func (s *ShopStub) AllOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]model.Order, error) {
	return s.list(status)
}

// OrderDetails returns the stored order.
func (s *ShopStub) OrderDetails(ctx context.Context, h *session.Handle, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DetailErr != nil {
		return nil, s.DetailErr
	}
	o, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &o, nil
}

// UpdateOrderStatus stores the new status and returns the confirmed order.
func (s *ShopStub) UpdateOrderStatus(ctx context.Context, h *session.Handle, id string, status model.OrderStatus) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Updates = append(s.Updates, status)
	if s.UpdateErr != nil {
		return nil, s.UpdateErr
	}
	o, ok := s.Orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	o.Status = status
	if status == model.OrderStatusReceived && o.PaymentMethod.IsCashOnDelivery() {
		o.IsPaid = true
	}
	s.Orders[id] = o
	return &o, nil
}

// DeleteOrder removes the order.
func (s *ShopStub) DeleteOrder(ctx context.Context, h *session.Handle, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Orders[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Orders, id)
	return nil
}

// UpdateCount reports how many status updates reached the stub.
func (s *ShopStub) UpdateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Updates)
}

// Remove deletes an order as if it vanished upstream.
func (s *ShopStub) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Orders, id)
}
