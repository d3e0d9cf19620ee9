package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
	"github.com/polkiloo/storefront/internal/server/http/middleware"
	"github.com/polkiloo/storefront/internal/session"
	testhelpers "github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = RegisterValidators(v)
	}
}

// facadeStub implements StorefrontFacade via function overrides.
type facadeStub struct {
	registerFn     func(context.Context, string, string, string) error
	loginFn        func(context.Context, string, string) (model.User, string, error)
	logoutFn       func(context.Context, *session.Handle) error
	myOrdersFn     func(context.Context, *session.Handle, model.OrderStatus) ([]usecase.OrderDetails, error)
	allOrdersFn    func(context.Context, *session.Handle, model.OrderStatus) ([]usecase.OrderDetails, error)
	detailsFn      func(context.Context, *session.Handle, string) (*usecase.OrderDetails, error)
	markFn         func(context.Context, *session.Handle, string) (*usecase.TransitionResult, error)
	changeFn       func(context.Context, *session.Handle, string, model.OrderStatus) (*usecase.TransitionResult, error)
	deleteFn       func(context.Context, *session.Handle, string) error
	selectProvince func(context.Context, *session.Handle, string) ([]model.District, error)
	selectDistrict func(context.Context, *session.Handle, string) ([]model.Ward, error)
	healthErr      error
}

func (s facadeStub) Resolve(ctx context.Context, cookie string) (*session.Handle, error) {
	return nil, domainErrors.ErrUnauthorized
}

func (s facadeStub) Register(ctx context.Context, name, email, password string) error {
	if s.registerFn != nil {
		return s.registerFn(ctx, name, email, password)
	}
	return nil
}

func (s facadeStub) Login(ctx context.Context, email, password string) (model.User, string, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, email, password)
	}
	return model.User{ID: "u1", Email: email, Role: model.RoleCustomer}, "cookie", nil
}

func (s facadeStub) Logout(ctx context.Context, h *session.Handle) error {
	if s.logoutFn != nil {
		return s.logoutFn(ctx, h)
	}
	return nil
}

func (s facadeStub) CookieMaxAge() int { return 3600 }

func (s facadeStub) MyOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]usecase.OrderDetails, error) {
	if s.myOrdersFn != nil {
		return s.myOrdersFn(ctx, h, status)
	}
	return nil, nil
}

func (s facadeStub) AllOrders(ctx context.Context, h *session.Handle, status model.OrderStatus) ([]usecase.OrderDetails, error) {
	if s.allOrdersFn != nil {
		return s.allOrdersFn(ctx, h, status)
	}
	return nil, nil
}

func (s facadeStub) OrderDetails(ctx context.Context, h *session.Handle, id string) (*usecase.OrderDetails, error) {
	if s.detailsFn != nil {
		return s.detailsFn(ctx, h, id)
	}
	d := usecase.Decorate(sampleOrder(id, model.OrderStatusDelivered), model.RoleCustomer)
	return &d, nil
}

func (s facadeStub) MarkReceived(ctx context.Context, h *session.Handle, id string) (*usecase.TransitionResult, error) {
	if s.markFn != nil {
		return s.markFn(ctx, h, id)
	}
	return transitionResult(id, model.OrderStatusDelivered, model.OrderStatusReceived), nil
}

func (s facadeStub) ChangeStatus(ctx context.Context, h *session.Handle, id string, status model.OrderStatus) (*usecase.TransitionResult, error) {
	if s.changeFn != nil {
		return s.changeFn(ctx, h, id, status)
	}
	return transitionResult(id, model.OrderStatusPending, status), nil
}

func (s facadeStub) DeleteOrder(ctx context.Context, h *session.Handle, id string) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, h, id)
	}
	return nil
}

func (s facadeStub) Provinces(ctx context.Context) ([]model.Province, error) {
	return []model.Province{{Code: "01", Name: "Ha Noi"}}, nil
}

func (s facadeStub) SelectProvince(ctx context.Context, h *session.Handle, code string) ([]model.District, error) {
	if s.selectProvince != nil {
		return s.selectProvince(ctx, h, code)
	}
	return []model.District{{Code: code + "1", Name: "District", ProvinceCode: code}}, nil
}

func (s facadeStub) SelectDistrict(ctx context.Context, h *session.Handle, code string) ([]model.Ward, error) {
	if s.selectDistrict != nil {
		return s.selectDistrict(ctx, h, code)
	}
	return []model.Ward{{Code: code + "-w", Name: "Ward", DistrictCode: code}}, nil
}

func (s facadeStub) HealthCheck(ctx context.Context) error { return s.healthErr }

var _ StorefrontFacade = facadeStub{}

func sampleOrder(id string, status model.OrderStatus) model.Order {
	return model.Order{
		ID:            id,
		Status:        status,
		PaymentMethod: model.PaymentMethodCOD,
		TotalPrice:    decimal.RequireFromString("42.50"),
		Items: []model.LineItem{
			{ProductID: "p1", Name: "Tea", Quantity: 2, Price: decimal.NewFromInt(10)},
		},
	}
}

func transitionResult(id string, from, to model.OrderStatus) *usecase.TransitionResult {
	confirmed := sampleOrder(id, to)
	return &usecase.TransitionResult{
		Details: usecase.Decorate(confirmed, model.RoleCustomer),
		Tabs: map[model.OrderStatus][]model.Order{
			from: nil,
			to:   {confirmed},
		},
	}
}

func performRequest(t *testing.T, method, route, target string, handler gin.HandlerFunc, role model.Role, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.Handle(method, route, func(c *gin.Context) {
		if role != "" {
			c.Set(middleware.SessionContextKey, testhelpers.NewHandle(role))
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeMessage(t *testing.T, resp *httptest.ResponseRecorder) dto.MessageResponse {
	t.Helper()
	var msg dto.MessageResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &msg); err != nil {
		t.Fatalf("decode message: %v (%s)", err, resp.Body.String())
	}
	if msg.Message == "" {
		t.Fatalf("expected a user-visible message, got %s", resp.Body.String())
	}
	return msg
}

func TestCurrentSession(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentSession(c); got != nil {
		t.Fatalf("expected nil when not set, got %v", got)
	}

	h := testhelpers.NewHandle(model.RoleStaff)
	c.Set(middleware.SessionContextKey, h)
	if got := CurrentSession(c); got != h {
		t.Fatalf("expected stored handle, got %v", got)
	}
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domainErrors.ErrSessionExpired, http.StatusUnauthorized},
		{domainErrors.ErrInvalidCredentials, http.StatusUnauthorized},
		{domainErrors.ErrUnauthorized, http.StatusUnauthorized},
		{domainErrors.ErrForbidden, http.StatusForbidden},
		{domainErrors.ErrNotFound, http.StatusNotFound},
		{domainErrors.ErrInvalidStatus, http.StatusBadRequest},
		{domainErrors.ErrTransitionNotAllowed, http.StatusConflict},
		{domainErrors.ErrTransitionRejected, http.StatusConflict},
		{domainErrors.ErrSuperseded, http.StatusConflict},
		{domainErrors.ErrAlreadyExists, http.StatusConflict},
		{domainErrors.ErrUpstream, http.StatusBadGateway},
		{errors.New("dial tcp: refused"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			got, message := statusOf(fmt.Errorf("wrapped: %w", tc.err))
			if got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
			if message == "" {
				t.Fatal("expected non-empty message")
			}
		})
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	name := testhelpers.RandomASCIIString(5, 10)
	var gotName string
	handler := NewAuthHandler(facadeStub{registerFn: func(_ context.Context, n, email, password string) error {
		gotName = n
		return nil
	}}).Register

	body, _ := json.Marshal(dto.RegisterRequest{Name: name, Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"})
	resp := performRequest(t, http.MethodPost, "/register", "/register", handler, "", body)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", resp.Code, resp.Body.String())
	}
	if gotName != name {
		t.Fatalf("expected name %q forwarded, got %q", name, gotName)
	}
	decodeMessage(t, resp)

	invalid := []dto.RegisterRequest{
		{Name: "n", Email: "not-an-email", Password: "secret1", ConfirmPassword: "secret1"},
		{Name: "n", Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret2"},
		{Email: "a@b.co", Password: "secret1", ConfirmPassword: "secret1"},
	}
	for _, req := range invalid {
		body, _ := json.Marshal(req)
		resp := performRequest(t, http.MethodPost, "/register", "/register", handler, "", body)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %+v, got %d", req, resp.Code)
		}
		decodeMessage(t, resp)
	}

	conflict := NewAuthHandler(facadeStub{registerFn: func(context.Context, string, string, string) error {
		return domainErrors.ErrAlreadyExists
	}}).Register
	resp = performRequest(t, http.MethodPost, "/register", "/register", conflict, "", body)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	body, _ := json.Marshal(dto.LoginRequest{Email: "a@b.co", Password: "secret"})
	resp := performRequest(t, http.MethodPost, "/login", "/login", NewAuthHandler(facadeStub{}).Login, "", body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Header().Get("Set-Cookie"), middleware.SessionCookieName+"=cookie") {
		t.Fatalf("expected session cookie, got %q", resp.Header().Get("Set-Cookie"))
	}
	var login dto.LoginResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &login); err != nil || login.User.Email != "a@b.co" {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}

	failing := NewAuthHandler(facadeStub{loginFn: func(context.Context, string, string) (model.User, string, error) {
		return model.User{}, "", domainErrors.ErrInvalidCredentials
	}}).Login
	resp = performRequest(t, http.MethodPost, "/login", "/login", failing, "", body)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	decodeMessage(t, resp)

	resp = performRequest(t, http.MethodPost, "/login", "/login", failing, "", []byte("{"))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", resp.Code)
	}
}

func TestAuthHandlerLogoutAndMe(t *testing.T) {
	var cleared *session.Handle
	handler := NewAuthHandler(facadeStub{logoutFn: func(_ context.Context, h *session.Handle) error {
		cleared = h
		return nil
	}})

	resp := performRequest(t, http.MethodPost, "/logout", "/logout", handler.Logout, model.RoleCustomer, nil)
	if resp.Code != http.StatusOK || cleared == nil {
		t.Fatalf("expected logout to clear session, got %d", resp.Code)
	}
	if msg := decodeMessage(t, resp); msg.Redirect != middleware.LoginPath {
		t.Fatalf("expected redirect to login, got %+v", msg)
	}

	resp = performRequest(t, http.MethodGet, "/me", "/me", handler.Me, model.RoleAdmin, nil)
	var user dto.UserResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &user); err != nil || user.Role != string(model.RoleAdmin) {
		t.Fatalf("unexpected user %s", resp.Body.String())
	}
}

func TestOrderHandlerList(t *testing.T) {
	var gotStatus model.OrderStatus
	handler := NewOrderHandler(facadeStub{myOrdersFn: func(_ context.Context, _ *session.Handle, status model.OrderStatus) ([]usecase.OrderDetails, error) {
		gotStatus = status
		return []usecase.OrderDetails{usecase.Decorate(sampleOrder("o1", model.OrderStatusShipping), model.RoleCustomer)}, nil
	}})

	resp := performRequest(t, http.MethodGet, "/orders", "/orders?status=shipping", handler.List, model.RoleCustomer, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if gotStatus != model.OrderStatusShipping {
		t.Fatalf("expected status filter to be forwarded, got %q", gotStatus)
	}
	var orders []dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &orders); err != nil || len(orders) != 1 {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
	if orders[0].PaymentLabel == "" || len(orders[0].Timeline) == 0 || orders[0].Actions.MarkReceived.Enabled {
		t.Fatalf("expected decorated order, got %+v", orders[0])
	}
	if !orders[0].Items[0].Subtotal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected subtotal %s", orders[0].Items[0].Subtotal)
	}

	failing := NewOrderHandler(facadeStub{myOrdersFn: func(context.Context, *session.Handle, model.OrderStatus) ([]usecase.OrderDetails, error) {
		return nil, domainErrors.ErrInvalidStatus
	}})
	resp = performRequest(t, http.MethodGet, "/orders", "/orders?status=returned", failing.List, model.RoleCustomer, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestOrderHandlerDetails(t *testing.T) {
	handler := NewOrderHandler(facadeStub{})
	resp := performRequest(t, http.MethodGet, "/orders/:id", "/orders/o7", handler.Get, model.RoleCustomer, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var order dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.ID != "o7" || !order.Actions.MarkReceived.Enabled || order.Targets != nil {
		t.Fatalf("unexpected order %+v", order)
	}

	missing := NewOrderHandler(facadeStub{detailsFn: func(context.Context, *session.Handle, string) (*usecase.OrderDetails, error) {
		return nil, domainErrors.ErrNotFound
	}})
	resp = performRequest(t, http.MethodGet, "/orders/:id", "/orders/nope", missing.Get, model.RoleCustomer, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestOrderHandlerMarkReceived(t *testing.T) {
	handler := NewOrderHandler(facadeStub{})
	resp := performRequest(t, http.MethodPut, "/orders/:id/received", "/orders/o1/received", handler.MarkReceived, model.RoleCustomer, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var res dto.TransitionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Message == "" || res.Order.Status != string(model.OrderStatusReceived) || res.Order.Actions.MarkReceived.Enabled {
		t.Fatalf("unexpected transition %+v", res)
	}
	if len(res.Tabs[string(model.OrderStatusReceived)]) != 1 || len(res.Tabs[string(model.OrderStatusDelivered)]) != 0 {
		t.Fatalf("unexpected tabs %+v", res.Tabs)
	}

	cases := []struct {
		err  error
		want int
	}{
		{domainErrors.ErrTransitionNotAllowed, http.StatusConflict},
		{domainErrors.ErrTransitionRejected, http.StatusConflict},
		{domainErrors.ErrUpstream, http.StatusBadGateway},
	}
	for _, tc := range cases {
		failing := NewOrderHandler(facadeStub{markFn: func(context.Context, *session.Handle, string) (*usecase.TransitionResult, error) {
			return nil, tc.err
		}})
		resp := performRequest(t, http.MethodPut, "/orders/:id/received", "/orders/o1/received", failing.MarkReceived, model.RoleCustomer, nil)
		if resp.Code != tc.want {
			t.Fatalf("expected %d for %v, got %d", tc.want, tc.err, resp.Code)
		}
		decodeMessage(t, resp)
	}
}

func TestSessionExpiredClearsCookieAndRedirects(t *testing.T) {
	handler := NewOrderHandler(facadeStub{myOrdersFn: func(context.Context, *session.Handle, model.OrderStatus) ([]usecase.OrderDetails, error) {
		return nil, fmt.Errorf("%w: refresh rejected", domainErrors.ErrSessionExpired)
	}})
	resp := performRequest(t, http.MethodGet, "/orders", "/orders", handler.List, model.RoleCustomer, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if msg := decodeMessage(t, resp); msg.Redirect != middleware.LoginPath {
		t.Fatalf("expected redirect, got %+v", msg)
	}
	if !strings.Contains(resp.Header().Get("Set-Cookie"), middleware.SessionCookieName+"=;") {
		t.Fatalf("expected cookie to be cleared, got %q", resp.Header().Get("Set-Cookie"))
	}
}

func TestUpstreamUnauthorizedIsNotReportedAsBadPassword(t *testing.T) {
	_, credentials := statusOf(domainErrors.ErrInvalidCredentials)
	_, refused := statusOf(fmt.Errorf("shop api: %w", domainErrors.ErrUnauthorized))
	if credentials == refused {
		t.Fatalf("expected distinct messages, both were %q", refused)
	}

	handler := NewOrderHandler(facadeStub{myOrdersFn: func(context.Context, *session.Handle, model.OrderStatus) ([]usecase.OrderDetails, error) {
		return nil, fmt.Errorf("shop api: %w", domainErrors.ErrUnauthorized)
	}})
	resp := performRequest(t, http.MethodGet, "/orders", "/orders", handler.List, model.RoleCustomer, nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	msg := decodeMessage(t, resp)
	if msg.Message != refused || msg.Redirect != middleware.LoginPath {
		t.Fatalf("unexpected response %+v", msg)
	}
	if !strings.Contains(resp.Header().Get("Set-Cookie"), middleware.SessionCookieName+"=;") {
		t.Fatalf("expected cookie to be cleared, got %q", resp.Header().Get("Set-Cookie"))
	}

	login := NewAuthHandler(facadeStub{loginFn: func(context.Context, string, string) (model.User, string, error) {
		return model.User{}, "", domainErrors.ErrInvalidCredentials
	}}).Login
	resp = performRequest(t, http.MethodPost, "/auth/login", "/auth/login", login, "", []byte(`{"email":"lan@example.com","password":"wrong-pass"}`))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if msg := decodeMessage(t, resp); msg.Message != credentials || msg.Redirect != "" {
		t.Fatalf("unexpected login failure response %+v", msg)
	}
}

func TestAdminOrderHandlerUpdateStatus(t *testing.T) {
	var got model.OrderStatus
	handler := NewAdminOrderHandler(facadeStub{changeFn: func(_ context.Context, _ *session.Handle, id string, status model.OrderStatus) (*usecase.TransitionResult, error) {
		got = status
		return transitionResult(id, model.OrderStatusPending, status), nil
	}})

	resp := performRequest(t, http.MethodPut, "/admin/orders/:id/status", "/admin/orders/o1/status", handler.UpdateStatus, model.RoleAdmin, []byte(`{"status":" Shipping "}`))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.Code, resp.Body.String())
	}
	if got != model.OrderStatusShipping {
		t.Fatalf("expected normalised status, got %q", got)
	}

	for _, body := range []string{`{"status":"returned"}`, `{}`, `{`} {
		resp := performRequest(t, http.MethodPut, "/admin/orders/:id/status", "/admin/orders/o1/status", handler.UpdateStatus, model.RoleAdmin, []byte(body))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, resp.Code)
		}
	}
}

func TestAdminOrderHandlerListGetDelete(t *testing.T) {
	handler := NewAdminOrderHandler(facadeStub{
		allOrdersFn: func(context.Context, *session.Handle, model.OrderStatus) ([]usecase.OrderDetails, error) {
			return []usecase.OrderDetails{usecase.Decorate(sampleOrder("o1", model.OrderStatusPaid), model.RoleAdmin)}, nil
		},
		detailsFn: func(_ context.Context, _ *session.Handle, id string) (*usecase.OrderDetails, error) {
			d := usecase.Decorate(sampleOrder(id, model.OrderStatusPaid), model.RoleAdmin)
			return &d, nil
		},
	})

	resp := performRequest(t, http.MethodGet, "/admin/orders", "/admin/orders", handler.List, model.RoleStaff, nil)
	var orders []dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &orders); err != nil || len(orders) != 1 || len(orders[0].Targets) != len(model.OrderStatuses()) {
		t.Fatalf("unexpected list %s", resp.Body.String())
	}

	resp = performRequest(t, http.MethodGet, "/admin/orders/:id", "/admin/orders/o2", handler.Get, model.RoleStaff, nil)
	var order dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &order); err != nil || order.ID != "o2" {
		t.Fatalf("unexpected order %s", resp.Body.String())
	}
	for _, target := range order.Targets {
		if target.Status == string(model.OrderStatusPending) && target.Enabled {
			t.Fatal("backward move must be disabled in the picker")
		}
	}

	resp = performRequest(t, http.MethodDelete, "/admin/orders/:id", "/admin/orders/o2", handler.Delete, model.RoleStaff, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	decodeMessage(t, resp)

	forbidden := NewAdminOrderHandler(facadeStub{deleteFn: func(context.Context, *session.Handle, string) error {
		return domainErrors.ErrForbidden
	}})
	resp = performRequest(t, http.MethodDelete, "/admin/orders/:id", "/admin/orders/o2", forbidden.Delete, model.RoleStaff, nil)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}
}

func TestAddressHandler(t *testing.T) {
	handler := NewAddressHandler(facadeStub{})

	resp := performRequest(t, http.MethodGet, "/provinces", "/provinces", handler.Provinces, model.RoleCustomer, nil)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "Ha Noi") {
		t.Fatalf("unexpected provinces %d %s", resp.Code, resp.Body.String())
	}

	resp = performRequest(t, http.MethodPut, "/province", "/province", handler.SelectProvince, model.RoleCustomer, []byte(`{"code":"01"}`))
	var districts []dto.AddressEntry
	if err := json.Unmarshal(resp.Body.Bytes(), &districts); err != nil || len(districts) != 1 || districts[0].Code != "011" {
		t.Fatalf("unexpected districts %s", resp.Body.String())
	}

	resp = performRequest(t, http.MethodPut, "/district", "/district", handler.SelectDistrict, model.RoleCustomer, []byte(`{"code":"011"}`))
	var wards []dto.AddressEntry
	if err := json.Unmarshal(resp.Body.Bytes(), &wards); err != nil || len(wards) != 1 || wards[0].Code != "011-w" {
		t.Fatalf("unexpected wards %s", resp.Body.String())
	}

	resp = performRequest(t, http.MethodPut, "/province", "/province", handler.SelectProvince, model.RoleCustomer, []byte(`{}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without code, got %d", resp.Code)
	}

	superseded := NewAddressHandler(facadeStub{selectProvince: func(context.Context, *session.Handle, string) ([]model.District, error) {
		return nil, domainErrors.ErrSuperseded
	}})
	resp = performRequest(t, http.MethodPut, "/province", "/province", superseded.SelectProvince, model.RoleCustomer, []byte(`{"code":"01"}`))
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestHealthHandler(t *testing.T) {
	resp := performRequest(t, http.MethodGet, "/healthz", "/healthz", NewHealthHandler(facadeStub{}).Check, "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	resp = performRequest(t, http.MethodGet, "/healthz", "/healthz", NewHealthHandler(facadeStub{healthErr: errors.New("down")}).Check, "", nil)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
