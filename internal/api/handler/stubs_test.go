package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/middleware"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/validation"
)

var testCookie = middleware.SessionCookie{Name: "sid"}

type stubSessions struct {
	mu      sync.Mutex
	started []string
	ended   []string
}

func (s *stubSessions) Start(_ context.Context, token string, _ json.RawMessage) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = append(s.started, token)
	return &domain.Session{ID: "sess-" + token, Token: token, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s *stubSessions) Resolve(_ context.Context, id string) (*domain.Session, error) {
	return &domain.Session{ID: id, Token: "tok-" + id}, nil
}

func (s *stubSessions) Remember(context.Context, string, json.RawMessage) error { return nil }

func (s *stubSessions) End(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = append(s.ended, id)
	return nil
}

type stubAuthService struct {
	loginFn   func(ctx context.Context, email, password string) (*ports.LoginOutput, error)
	currentFn func(ctx context.Context, token, sessionID string) (*ports.CurrentUserOutput, error)
	loggedOut []string
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginOutput, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(_ context.Context, sessionID string) error {
	s.loggedOut = append(s.loggedOut, sessionID)
	return nil
}

func (s *stubAuthService) CurrentUser(ctx context.Context, token, sessionID string) (*ports.CurrentUserOutput, error) {
	return s.currentFn(ctx, token, sessionID)
}

type stubRegistrationService struct {
	registerFn func(ctx context.Context, in ports.RegistrationInput) (*ports.RegistrationOutput, error)
}

func (s *stubRegistrationService) Register(ctx context.Context, in ports.RegistrationInput) (*ports.RegistrationOutput, error) {
	return s.registerFn(ctx, in)
}

type stubDashboardService struct {
	loadFn func(ctx context.Context, token string, role domain.Role) (*ports.DashboardView, error)
}

func (s *stubDashboardService) Load(ctx context.Context, token string, role domain.Role) (*ports.DashboardView, error) {
	return s.loadFn(ctx, token, role)
}

type stubStatusService struct {
	currentFn func(ctx context.Context, token string) (*domain.User, error)
	watchFn   func(ctx context.Context, token string, emit func(*domain.User) error) error
}

func (s *stubStatusService) Current(ctx context.Context, token string) (*domain.User, error) {
	return s.currentFn(ctx, token)
}

func (s *stubStatusService) Watch(ctx context.Context, token string, emit func(*domain.User) error) error {
	return s.watchFn(ctx, token, emit)
}

type stubBackend struct {
	forwardFn func(ctx context.Context, req ports.ForwardRequest) (*ports.ForwardResponse, error)
}

func (s *stubBackend) RegisterUser(context.Context, ports.RegisterUserInput) (*ports.RegistrationResult, error) {
	return nil, nil
}

func (s *stubBackend) AttachRoleProfile(context.Context, string, domain.Role, ports.ProfileInput) (map[string]any, error) {
	return nil, nil
}

func (s *stubBackend) Login(context.Context, string, string) (*ports.LoginResult, error) {
	return nil, nil
}

func (s *stubBackend) Me(context.Context, string) (*domain.User, map[string]any, error) {
	return nil, nil, nil
}

func (s *stubBackend) Dashboard(context.Context, string, domain.Role) (map[string]any, error) {
	return nil, nil
}

func (s *stubBackend) Forward(ctx context.Context, req ports.ForwardRequest) (*ports.ForwardResponse, error) {
	return s.forwardFn(ctx, req)
}

func (s *stubBackend) Ping(context.Context) error { return nil }

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	return e
}

// serve runs h behind the session middleware, so tokens arrive the same way
// they do in production: from a Bearer header or the sid cookie.
func serve(e *echo.Echo, sessions ports.SessionService, h echo.HandlerFunc, req *http.Request, params ...string) (*httptest.ResponseRecorder, error) {
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if len(params) > 0 {
		var names, values []string
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	err := middleware.Session(sessions, testCookie, zerolog.Nop())(h)(c)
	return rec, err
}
