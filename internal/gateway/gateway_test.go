package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/session"
	"github.com/polkiloo/storefront/internal/test"
)

var clock = time.Unix(1_700_000_000, 0)

type refresherStub struct {
	calls atomic.Int32
	delay time.Duration
	err   error
	token string

	started chan struct{}
	release chan struct{}
}

func (r *refresherStub) RefreshSession(ctx context.Context, current model.Session) (model.Session, error) {
	r.calls.Add(1)
	if r.started != nil {
		close(r.started)
		<-r.release
	}
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	if r.err != nil {
		return model.Session{}, r.err
	}
	return current.WithAccessToken(r.token, "rotated"), nil
}

type fixture struct {
	gw       *Gateway
	store    *session.Store
	sessions *test.SessionRepositoryStub
	handle   *session.Handle
	server   *httptest.Server
	hits     *atomic.Int32
	seen     chan string
}

func newFixture(t *testing.T, access string, refresher Refresher, opts ...Option) *fixture {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	sessions := test.NewSessionRepositoryStub()
	store := session.NewStore(sessions, test.NewOrderViewRepositoryStub(), logger)

	h, err := store.Open(context.Background(), model.User{ID: "u1", Role: model.RoleCustomer}, access, "refresh")
	if err != nil {
		t.Fatalf("open session: %v", err)
	}

	hits := &atomic.Int32{}
	seen := make(chan string, 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		seen <- r.Header.Get(HeaderToken)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	opts = append([]Option{WithClock(func() time.Time { return clock })}, opts...)
	gw := New(srv.Client(), refresher, store, logger, opts...)
	return &fixture{gw: gw, store: store, sessions: sessions, handle: h, server: srv, hits: hits, seen: seen}
}

func (f *fixture) call(t *testing.T) (*http.Response, error) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/orders/my-order", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := f.gw.Do(context.Background(), f.handle, req)
	if resp != nil {
		resp.Body.Close()
	}
	return resp, err
}

func TestValidTokenIsAttachedWithoutRefresh(t *testing.T) {
	valid := signed(t, jwt.MapClaims{"exp": clock.Add(time.Hour).Unix()})
	refresher := &refresherStub{token: "unused"}
	f := newFixture(t, valid, refresher)

	if _, err := f.call(t); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refresher.calls.Load() != 0 {
		t.Fatalf("expected no refresh, got %d", refresher.calls.Load())
	}
	if got := <-f.seen; got != "Bearer "+valid {
		t.Fatalf("unexpected header %q", got)
	}
}

func TestTokenWithoutExpiryIsNeverRefreshed(t *testing.T) {
	forever := signed(t, jwt.MapClaims{"sub": "u1"})
	refresher := &refresherStub{token: "unused"}
	f := newFixture(t, forever, refresher)

	if _, err := f.call(t); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refresher.calls.Load() != 0 {
		t.Fatal("token without exp must not be refreshed")
	}
}

func TestExpiredTokenIsRefreshedAndPersisted(t *testing.T) {
	expired := signed(t, jwt.MapClaims{"exp": clock.Add(-time.Second).Unix()})
	fresh := signed(t, jwt.MapClaims{"exp": clock.Add(time.Hour).Unix()})
	refresher := &refresherStub{token: fresh}
	f := newFixture(t, expired, refresher)

	if _, err := f.call(t); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refresher.calls.Load() != 1 {
		t.Fatalf("expected one refresh, got %d", refresher.calls.Load())
	}
	if got := <-f.seen; got != "Bearer "+fresh {
		t.Fatalf("request carried %q", got)
	}

	sess, active := f.handle.Snapshot()
	if !active || sess.AccessToken != fresh || sess.RefreshToken != "rotated" {
		t.Fatalf("handle not updated: %+v", sess)
	}
	stored, ok := f.sessions.Stored(sess.ID)
	if !ok || stored.AccessToken != fresh || stored.User.ID != "u1" {
		t.Fatalf("credential not persisted: %+v", stored)
	}
}

func TestUndecodableTokenIsRefreshed(t *testing.T) {
	fresh := signed(t, jwt.MapClaims{"exp": clock.Add(time.Hour).Unix()})
	refresher := &refresherStub{token: fresh}
	f := newFixture(t, "garbage", refresher)

	if _, err := f.call(t); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refresher.calls.Load() != 1 {
		t.Fatal("expected refresh for undecodable token")
	}
}

func TestRefreshFailureClearsSessionAndSkipsRequest(t *testing.T) {
	expired := signed(t, jwt.MapClaims{"exp": clock.Add(-time.Minute).Unix()})
	refresher := &refresherStub{err: errors.New("refresh cookie revoked")}

	var notified atomic.Int32
	f := newFixture(t, expired, refresher, WithExpiredNotifier(func(context.Context, model.Session) {
		notified.Add(1)
	}))
	sess, _ := f.handle.Snapshot()

	_, err := f.call(t)
	if !errors.Is(err, domainErrors.ErrSessionExpired) {
		t.Fatalf("expected session expired, got %v", err)
	}
	if f.hits.Load() != 0 {
		t.Fatal("original request must not be sent")
	}
	if _, active := f.handle.Snapshot(); active {
		t.Fatal("credential must be cleared")
	}
	if _, ok := f.sessions.Stored(sess.ID); ok {
		t.Fatal("stored session must be deleted")
	}
	if notified.Load() != 1 {
		t.Fatalf("expected one expiry notice, got %d", notified.Load())
	}

	if _, err := f.call(t); !errors.Is(err, domainErrors.ErrSessionExpired) {
		t.Fatalf("cleared session must stay expired, got %v", err)
	}
	if refresher.calls.Load() != 1 {
		t.Fatal("cleared session must not refresh again")
	}
}

func TestPersistFailureDoesNotSendRequest(t *testing.T) {
	expired := signed(t, jwt.MapClaims{"exp": clock.Add(-time.Minute).Unix()})
	refresher := &refresherStub{token: signed(t, jwt.MapClaims{"exp": clock.Add(time.Hour).Unix()})}
	f := newFixture(t, expired, refresher)
	f.sessions.UpdateErr = errors.New("db down")

	_, err := f.call(t)
	if err == nil || errors.Is(err, domainErrors.ErrSessionExpired) {
		t.Fatalf("expected persist error, got %v", err)
	}
	if f.hits.Load() != 0 {
		t.Fatal("request must not be sent")
	}
}

func TestLogoutDuringRefreshKeepsSessionDestroyed(t *testing.T) {
	expired := signed(t, jwt.MapClaims{"exp": clock.Add(-time.Minute).Unix()})
	refresher := &refresherStub{
		token:   signed(t, jwt.MapClaims{"exp": clock.Add(time.Hour).Unix()}),
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := newFixture(t, expired, refresher)
	sess, _ := f.handle.Snapshot()

	req, err := http.NewRequest(http.MethodGet, f.server.URL+"/orders/my-order", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	done := make(chan error, 1)
	go func() {
		resp, err := f.gw.Do(context.Background(), f.handle, req)
		if resp != nil {
			resp.Body.Close()
		}
		done <- err
	}()

	<-refresher.started
	if err := f.store.Clear(context.Background(), f.handle); err != nil {
		t.Fatalf("logout: %v", err)
	}
	close(refresher.release)

	if err := <-done; !errors.Is(err, domainErrors.ErrSessionExpired) {
		t.Fatalf("expected session expired, got %v", err)
	}
	if _, active := f.handle.Snapshot(); active {
		t.Fatal("logged out handle became active again")
	}
	if _, ok := f.sessions.Stored(sess.ID); ok {
		t.Fatal("logged out session row was restored")
	}
	if f.hits.Load() != 0 {
		t.Fatal("request must not reach the shop api after logout")
	}
}

func TestConcurrentExpiredCallersShareOneRefresh(t *testing.T) {
	expired := signed(t, jwt.MapClaims{"exp": clock.Add(-time.Minute).Unix()})
	fresh := signed(t, jwt.MapClaims{"exp": clock.Add(time.Hour).Unix()})
	refresher := &refresherStub{token: fresh, delay: 50 * time.Millisecond}
	f := newFixture(t, expired, refresher)

	const callers = 8
	var wg sync.WaitGroup
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, _ := http.NewRequest(http.MethodGet, f.server.URL+"/orders/list", nil)
			resp, err := f.gw.Do(context.Background(), f.handle, req)
			if resp != nil {
				resp.Body.Close()
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if n := refresher.calls.Load(); n != 1 {
		t.Fatalf("expected a single refresh, got %d", n)
	}
	if f.hits.Load() != callers {
		t.Fatalf("expected %d requests, got %d", callers, f.hits.Load())
	}
	for i := 0; i < callers; i++ {
		if got := <-f.seen; got != "Bearer "+fresh {
			t.Fatalf("request carried stale token %q", got)
		}
	}
	if sess, _ := f.handle.Snapshot(); sess.AccessToken != fresh {
		t.Fatalf("session ended with %q", sess.AccessToken)
	}
}
