package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/validation"
)

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Login_SetsCookie(t *testing.T) {
	e := newEcho()
	sessions := &stubSessions{}
	auth := &stubAuthService{
		loginFn: func(_ context.Context, email, password string) (*ports.LoginOutput, error) {
			assert.Equal(t, "a@b.co", email)
			return &ports.LoginOutput{
				Status:  http.StatusOK,
				Payload: map[string]any{"success": true, "token": "tok"},
				Session: &domain.Session{ID: "sess-1", Token: "tok", ExpiresAt: time.Now().Add(time.Hour)},
			}, nil
		},
	}
	h := NewAuthHandler(auth, sessions, testCookie, zerolog.Nop())

	rec, err := serve(e, sessions, h.Login, jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"a@b.co","password":"x"}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "sid=sess-1")
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "HttpOnly")

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "tok", body["token"])
}

func TestAuthHandler_Login_ValidationErrors(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{
		loginFn: func(context.Context, string, string) (*ports.LoginOutput, error) {
			t.Fatalf("service must not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(auth, &stubSessions{}, testCookie, zerolog.Nop())

	_, err := serve(e, &stubSessions{}, h.Login, jsonRequest(http.MethodPost, "/api/auth/login", `{"email":"nope"}`))
	var fe validation.FieldErrors
	require.True(t, errors.As(err, &fe), "want FieldErrors, got %v", err)
	assert.Contains(t, fe, "email")
	assert.Contains(t, fe, "password")
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{}
	h := NewAuthHandler(auth, &stubSessions{}, testCookie, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "abc"})
	rec, err := serve(e, &stubSessions{}, h.Logout, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"abc"}, auth.loggedOut)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestAuthHandler_Session(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{
		currentFn: func(_ context.Context, token, sessionID string) (*ports.CurrentUserOutput, error) {
			assert.Equal(t, "tok-abc", token)
			assert.Equal(t, "abc", sessionID)
			return &ports.CurrentUserOutput{User: &domain.User{ID: "u1", Role: domain.RoleCoach, Status: domain.StatusActive}}, nil
		},
	}
	h := NewAuthHandler(auth, &stubSessions{}, testCookie, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: "abc"})
	rec, err := serve(e, &stubSessions{}, h.Session, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"coach"`)
}

func TestAuthHandler_Session_UnauthorizedClearsCookie(t *testing.T) {
	e := newEcho()
	auth := &stubAuthService{
		currentFn: func(context.Context, string, string) (*ports.CurrentUserOutput, error) {
			return nil, domain.ErrUnauthorized
		},
	}
	h := NewAuthHandler(auth, &stubSessions{}, testCookie, zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.Header.Set("Authorization", "Bearer stale")
	rec, err := serve(e, &stubSessions{}, h.Session, req)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}
