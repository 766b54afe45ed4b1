package api

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/handler"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/middleware"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/service"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/validation"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/infrastructure/backend"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/infrastructure/http/handlers"
)

// newTestRouter wires real handlers over nil backends. Only paths that are
// answered before any backend call are exercised here.
func newTestRouter(t *testing.T, limiter *middleware.RateLimiter) *echo.Echo {
	t.Helper()
	return newTestRouterWithSessions(t, limiter, nil)
}

func newTestRouterWithSessions(t *testing.T, limiter *middleware.RateLimiter, sessions ports.SessionService) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()
	cookie := middleware.SessionCookie{Name: "sid"}

	return NewRouter(Dependencies{
		Log:          log,
		Sessions:     sessions,
		Cookie:       cookie,
		RateLimiter:  limiter,
		Registerer:   prometheus.NewRegistry(),
		Auth:         handler.NewAuthHandler(service.NewAuthService(nil, nil, log), nil, cookie, log),
		Registration: handler.NewRegistrationHandler(service.NewRegistrationService(nil, nil, log), nil, cookie, handler.RegistrationConfig{}, log),
		Dashboard:    handler.NewDashboardHandler(service.NewDashboardService(nil, log), nil, cookie, log),
		Status:       handler.NewStatusHandler(service.NewStatusService(nil, 0, log), nil, cookie, log),
		Proxy:        handler.NewProxyHandler(nil, backend.GroupPath, nil, cookie, log),
		Validate:     handler.NewValidateHandler(validation.New()),
		Health:       handlers.NewHealthHandler(),
		HealthReady:  handlers.NewHealthDependenciesHandler(nil),
	})
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.RemoteAddr = "192.0.2.1:4000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_OperationalRoutes(t *testing.T) {
	e := newTestRouter(t, nil)

	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "").Code)
	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health/ready", "").Code)

	rec := do(e, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_ProtectedRoutesNeedToken(t *testing.T) {
	e := newTestRouter(t, nil)

	for _, target := range []string{"/api/auth/session", "/api/account/status", "/api/account/status/stream"} {
		rec := do(e, http.MethodGet, target, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, target)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, false, body["success"])
	}
}

func TestRouter_DashboardWithoutSessionRedirects(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := do(e, http.MethodGet, "/dashboard/coach", "")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestRouter_UnknownProxyGroup(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := do(e, http.MethodGet, "/api/proxy/payments/list", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_ValidateEndpoint(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := do(e, http.MethodPost, "/api/validate/login", `{"email":" Ana@Example.com ","password":"x"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["valid"])
}

func TestRouter_MalformedBearer(t *testing.T) {
	e := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set(echo.HeaderAuthorization, "Token abc")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RateLimitAppliesToAPI(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	limiter := middleware.NewRateLimiter(ctx, nil, middleware.RateLimitConfig{Limit: middleware.PerMinute(60, 1)}, zerolog.Nop())
	e := newTestRouter(t, limiter)

	require.Equal(t, http.StatusOK, do(e, http.MethodPost, "/api/validate/login", `{}`).Code)
	rec := do(e, http.MethodPost, "/api/validate/login", `{}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Operational routes are outside /api.
	require.Equal(t, http.StatusOK, do(e, http.MethodGet, "/health", "").Code)
}

type countingSessions struct {
	resolves atomic.Int32
}

func (s *countingSessions) Start(context.Context, string, json.RawMessage) (*domain.Session, error) {
	return nil, nil
}

func (s *countingSessions) Resolve(context.Context, string) (*domain.Session, error) {
	s.resolves.Add(1)
	return nil, domain.ErrSessionNotFound
}

func (s *countingSessions) Remember(context.Context, string, json.RawMessage) error { return nil }

func (s *countingSessions) End(context.Context, string) error { return nil }

func TestRouter_ThrottledRequestSkipsSessionLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := &countingSessions{}
	limiter := middleware.NewRateLimiter(ctx, nil, middleware.RateLimitConfig{Limit: middleware.PerMinute(60, 1)}, zerolog.Nop())
	e := newTestRouterWithSessions(t, limiter, sessions)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/validate/login", strings.NewReader(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.AddCookie(&http.Cookie{Name: "sid", Value: "abc"})
		req.RemoteAddr = "192.0.2.7:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, send().Code)
	require.Equal(t, int32(1), sessions.resolves.Load())

	require.Equal(t, http.StatusTooManyRequests, send().Code)
	require.Equal(t, int32(1), sessions.resolves.Load(), "throttled request must not resolve the session")
}
