package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/lifecycle"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/session"
)

// OrderAPI is the subset of the shop API serving orders.
type OrderAPI interface {
	MyOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]model.Order, error)
	AllOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]model.Order, error)
	OrderDetails(ctx context.Context, h *session.Handle, id string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, h *session.Handle, id string, status model.OrderStatus) (*model.Order, error)
	DeleteOrder(ctx context.Context, h *session.Handle, id string) error
}

// OrderDetails is an order decorated with everything needed to render it.
type OrderDetails struct {
	Order        model.Order
	PaymentLabel string
	Actions      lifecycle.Actions
	Timeline     []lifecycle.Step
	// Targets is only filled for back-office actors.
	Targets []lifecycle.Target
}

// TransitionResult is the server-confirmed order plus the re-fetched status tabs
// it left and entered.
type TransitionResult struct {
	Details OrderDetails
	Tabs    map[model.OrderStatus][]model.Order
}

// OrderUseCase runs the order lifecycle protocol against the shop API.
type OrderUseCase struct {
	api    OrderAPI
	views  repository.OrderViewRepository
	logger *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(api OrderAPI, views repository.OrderViewRepository, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{api: api, views: views, logger: logger}
}

// Decorate builds the view model of o for an actor with role.
func Decorate(o model.Order, role model.Role) OrderDetails {
	d := OrderDetails{
		Order:        o,
		PaymentLabel: lifecycle.PaymentLabel(o.PaymentMethod, o.IsPaid, o.Status),
		Actions:      lifecycle.CustomerActions(o.Status),
		Timeline:     lifecycle.Timeline(o.Status),
	}
	if role.IsBackOffice() {
		d.Targets = lifecycle.AdminTargets(o.Status)
	}
	return d
}

func parseFilter(raw model.OrderStatus) (model.OrderStatus, error) {
	if raw == "" {
		return "", nil
	}
	return model.ParseOrderStatus(string(raw))
}

func requireBackOffice(h *session.Handle) (model.Session, error) {
	sess, _ := h.Snapshot()
	if !sess.User.Role.IsBackOffice() {
		return sess, domainErrors.ErrForbidden
	}
	return sess, nil
}

// remember writes server values to the cache. Cache failures never fail the request.
func (u *OrderUseCase) remember(ctx context.Context, sessionID string, orders ...model.Order) {
	if len(orders) == 0 {
		return
	}
	views := make([]model.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, model.ViewOf(sessionID, o))
	}
	if err := u.views.Upsert(ctx, views...); err != nil {
		u.logger.Warn("cache orders failed", slog.String("session", sessionID), slog.Any("error", err))
	}
}

// ListMine lists the customer's orders in status; empty status lists all.
func (u *OrderUseCase) ListMine(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]model.Order, error) {
	status, err := parseFilter(status)
	if err != nil {
		return nil, err
	}
	orders, err := u.api.MyOrders(ctx, h, status)
	if err != nil {
		return nil, err
	}
	u.remember(ctx, h.ID(), orders...)
	return orders, nil
}

// ListAll lists every order in status for the back-office.
func (u *OrderUseCase) ListAll(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]model.Order, error) {
	if _, err := requireBackOffice(h); err != nil {
		return nil, err
	}
	status, err := parseFilter(status)
	if err != nil {
		return nil, err
	}
	orders, err := u.api.AllOrders(ctx, h, status)
	if err != nil {
		return nil, err
	}
	u.remember(ctx, h.ID(), orders...)
	return orders, nil
}

// Details fetches and decorates a single order.
func (u *OrderUseCase) Details(ctx context.Context, h *session.Handle, id string) (*OrderDetails, error) {
	o, err := u.api.OrderDetails(ctx, h, id)
	if err != nil {
		return nil, err
	}
	u.remember(ctx, h.ID(), *o)
	sess, _ := h.Snapshot()
	d := Decorate(*o, sess.User.Role)
	return &d, nil
}

// currentStatus returns the last known status, asking the shop API when nothing is cached.
func (u *OrderUseCase) currentStatus(ctx context.Context, h *session.Handle, id string) (model.OrderStatus, error) {
	view, err := u.views.Get(ctx, h.ID(), id)
	if err == nil {
		return view.Status, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		u.logger.Warn("read cached order failed", slog.String("order", id), slog.Any("error", err))
	}
	o, err := u.api.OrderDetails(ctx, h, id)
	if err != nil {
		return "", err
	}
	u.remember(ctx, h.ID(), *o)
	return o.Status, nil
}

// MarkReceived confirms delivery on behalf of the customer.
func (u *OrderUseCase) MarkReceived(ctx context.Context, h *session.Handle, id string) (*TransitionResult, error) {
	return u.transition(ctx, h, id, model.RoleCustomer, model.OrderStatusReceived)
}

// Transition moves an order to target on behalf of the back-office.
func (u *OrderUseCase) Transition(ctx context.Context, h *session.Handle, id string, target model.OrderStatus) (*TransitionResult, error) {
	sess, err := requireBackOffice(h)
	if err != nil {
		return nil, err
	}
	return u.transition(ctx, h, id, sess.User.Role, target)
}

// transition checks the rules locally, then lets the shop API decide. Nothing local
// changes until the server confirms.
func (u *OrderUseCase) transition(ctx context.Context, h *session.Handle, id string, actor model.Role, target model.OrderStatus) (*TransitionResult, error) {
	from, err := u.currentStatus(ctx, h, id)
	if err != nil {
		return nil, err
	}
	if err := lifecycle.CanTransition(actor, from, target); err != nil {
		return nil, err
	}

	confirmed, err := u.api.UpdateOrderStatus(ctx, h, id, target)
	if err != nil {
		return nil, fmt.Errorf("update order %s to %s: %w", id, target, err)
	}
	u.remember(ctx, h.ID(), *confirmed)

	sess, _ := h.Snapshot()
	u.logger.Info("order status changed",
		slog.String("order", id),
		slog.String("from", string(from)),
		slog.String("to", string(confirmed.Status)),
		slog.String("actor", string(sess.User.Role)))

	return &TransitionResult{
		Details: Decorate(*confirmed, sess.User.Role),
		Tabs:    u.refreshTabs(ctx, h, sess.User.Role, from, confirmed.Status),
	}, nil
}

// refreshTabs re-fetches the status-filtered lists an order moved between. A tab
// that fails to load is left out and logged.
func (u *OrderUseCase) refreshTabs(ctx context.Context, h *session.Handle, role model.Role, statuses ...model.OrderStatus) map[model.OrderStatus][]model.Order {
	tabs := make(map[model.OrderStatus][]model.Order, len(statuses))
	for _, s := range statuses {
		if _, done := tabs[s]; done {
			continue
		}
		var (
			orders []model.Order
			err    error
		)
		if role.IsBackOffice() {
			orders, err = u.api.AllOrders(ctx, h, s)
		} else {
			orders, err = u.api.MyOrders(ctx, h, s)
		}
		if err != nil {
			u.logger.Warn("refresh status tab failed", slog.String("status", string(s)), slog.Any("error", err))
			continue
		}
		u.remember(ctx, h.ID(), orders...)
		tabs[s] = orders
	}
	return tabs
}

// Delete removes an order upstream and drops it from the cache.
func (u *OrderUseCase) Delete(ctx context.Context, h *session.Handle, id string) error {
	if _, err := requireBackOffice(h); err != nil {
		return err
	}
	if err := u.api.DeleteOrder(ctx, h, id); err != nil {
		return err
	}
	if err := u.views.Delete(ctx, h.ID(), id); err != nil {
		u.logger.Warn("drop cached order failed", slog.String("order", id), slog.Any("error", err))
	}
	return nil
}

// Resync refreshes the cached copy of one order from the shop API. Orders gone
// upstream are dropped from the cache.
func (u *OrderUseCase) Resync(ctx context.Context, h *session.Handle, id string) error {
	o, err := u.api.OrderDetails(ctx, h, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return u.views.Delete(ctx, h.ID(), id)
		}
		return err
	}
	return u.views.Upsert(ctx, model.ViewOf(h.ID(), *o))
}
