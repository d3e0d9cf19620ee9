package handlers

import (
	"context"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
	"github.com/polkiloo/storefront/internal/session"
	"github.com/polkiloo/storefront/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (model.User, string, error)
	Logout(ctx context.Context, h *session.Handle) error
	CookieMaxAge() int
}

// OrderFacade exposes the customer side of the order lifecycle.
type OrderFacade interface {
	MyOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]usecase.OrderDetails, error)
	OrderDetails(ctx context.Context, h *session.Handle, id string) (*usecase.OrderDetails, error)
	MarkReceived(ctx context.Context, h *session.Handle, id string) (*usecase.TransitionResult, error)
}

// AdminFacade exposes the back-office order operations.
type AdminFacade interface {
	AllOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]usecase.OrderDetails, error)
	OrderDetails(ctx context.Context, h *session.Handle, id string) (*usecase.OrderDetails, error)
	ChangeStatus(ctx context.Context, h *session.Handle, id string, status model.OrderStatus) (*usecase.TransitionResult, error)
	DeleteOrder(ctx context.Context, h *session.Handle, id string) error
}

// AddressFacade drives the cascading address form.
type AddressFacade interface {
	Provinces(ctx context.Context) ([]model.Province, error)
	SelectProvince(ctx context.Context, h *session.Handle, code string) ([]model.District, error)
	SelectDistrict(ctx context.Context, h *session.Handle, code string) ([]model.Ward, error)
}

// HealthChecker reports readiness of the backing storage.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	middleware.SessionResolver
	AuthFacade
	OrderFacade
	AdminFacade
	AddressFacade
	HealthChecker
}
