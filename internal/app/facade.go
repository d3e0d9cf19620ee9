package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/storefront/internal/adapter/shopapi"
	"github.com/polkiloo/storefront/internal/config"
	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/session"
	"github.com/polkiloo/storefront/internal/usecase"
)

// HealthChecker reports readiness of the backing storage.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade adapts the use cases to the HTTP handlers and the sync worker.
type StorefrontFacade struct {
	auth      *usecase.AuthUseCase
	orders    *usecase.OrderUseCase
	addresses *usecase.AddressUseCase
	sessions  *session.Store
	views     repository.OrderViewRepository
	health    HealthChecker
	cookieTTL time.Duration
}

func NewStorefrontFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	addresses *usecase.AddressUseCase,
	sessions *session.Store,
	views repository.OrderViewRepository,
	health HealthChecker,
	cfg *config.Config,
) *StorefrontFacade {
	return &StorefrontFacade{
		auth:      auth,
		orders:    orders,
		addresses: addresses,
		sessions:  sessions,
		views:     views,
		health:    health,
		cookieTTL: cfg.SessionTTL,
	}
}

func (f *StorefrontFacade) Resolve(ctx context.Context, cookie string) (*session.Handle, error) {
	return f.auth.Resolve(ctx, cookie)
}

func (f *StorefrontFacade) Register(ctx context.Context, name, email, password string) error {
	return f.auth.Register(ctx, shopapi.RegisterInput{Name: name, Email: email, Password: password})
}

func (f *StorefrontFacade) Login(ctx context.Context, email, password string) (model.User, string, error) {
	h, cookie, err := f.auth.Login(ctx, email, password)
	if err != nil {
		return model.User{}, "", err
	}
	sess, _ := h.Snapshot()
	return sess.User, cookie, nil
}

func (f *StorefrontFacade) Logout(ctx context.Context, h *session.Handle) error {
	f.addresses.Forget(h.ID())
	return f.auth.Logout(ctx, h)
}

func (f *StorefrontFacade) CookieMaxAge() int {
	return int(f.cookieTTL / time.Second)
}

func decorateAll(orders []model.Order, role model.Role) []usecase.OrderDetails {
	out := make([]usecase.OrderDetails, 0, len(orders))
	for _, o := range orders {
		out = append(out, usecase.Decorate(o, role))
	}
	return out
}

func roleOf(h *session.Handle) model.Role {
	sess, _ := h.Snapshot()
	return sess.User.Role
}

func (f *StorefrontFacade) MyOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]usecase.OrderDetails, error) {
	orders, err := f.orders.ListMine(ctx, h, status)
	if err != nil {
		return nil, err
	}
	return decorateAll(orders, model.RoleCustomer), nil
}

func (f *StorefrontFacade) AllOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]usecase.OrderDetails, error) {
	orders, err := f.orders.ListAll(ctx, h, status)
	if err != nil {
		return nil, err
	}
	return decorateAll(orders, roleOf(h)), nil
}

func (f *StorefrontFacade) OrderDetails(ctx context.Context, h *session.Handle, id string) (*usecase.OrderDetails, error) {
	return f.orders.Details(ctx, h, id)
}

func (f *StorefrontFacade) MarkReceived(ctx context.Context, h *session.Handle, id string) (*usecase.TransitionResult, error) {
	return f.orders.MarkReceived(ctx, h, id)
}

func (f *StorefrontFacade) ChangeStatus(ctx context.Context, h *session.Handle, id string, status model.OrderStatus) (*usecase.TransitionResult, error) {
	return f.orders.Transition(ctx, h, id, status)
}

func (f *StorefrontFacade) DeleteOrder(ctx context.Context, h *session.Handle, id string) error {
	return f.orders.Delete(ctx, h, id)
}

func (f *StorefrontFacade) Provinces(ctx context.Context) ([]model.Province, error) {
	return f.addresses.Provinces(ctx)
}

func (f *StorefrontFacade) SelectProvince(ctx context.Context, h *session.Handle, code string) ([]model.District, error) {
	return f.addresses.SelectProvince(ctx, h, code)
}

func (f *StorefrontFacade) SelectDistrict(ctx context.Context, h *session.Handle, code string) ([]model.Ward, error) {
	return f.addresses.SelectDistrict(ctx, h, code)
}

func (f *StorefrontFacade) HealthCheck(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

func (f *StorefrontFacade) SweepIdleSessions(ctx context.Context, before time.Time) (int, error) {
	ids, err := f.sessions.SweepIdle(ctx, before)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		f.addresses.Forget(id.String())
	}
	return len(ids), nil
}

func (f *StorefrontFacade) StaleOrderViews(ctx context.Context, limit int, staleBefore time.Time) ([]model.OrderView, error) {
	return f.views.SelectBatchForSync(ctx, limit, staleBefore)
}

// ResyncOrderView refreshes view with the credential of its owning session. A
// session that is gone counts as expired.
func (f *StorefrontFacade) ResyncOrderView(ctx context.Context, view model.OrderView) error {
	id, err := uuid.Parse(view.SessionID)
	if err != nil {
		return fmt.Errorf("%w: malformed session id %q", domainErrors.ErrSessionExpired, view.SessionID)
	}
	h, err := f.sessions.Load(ctx, id)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return fmt.Errorf("%w: session %s", domainErrors.ErrSessionExpired, view.SessionID)
		}
		return err
	}
	return f.orders.Resync(ctx, h, view.OrderID)
}

func (f *StorefrontFacade) DropSessionViews(ctx context.Context, sessionID string) error {
	f.addresses.Forget(sessionID)
	return f.views.DeleteBySession(ctx, sessionID)
}
