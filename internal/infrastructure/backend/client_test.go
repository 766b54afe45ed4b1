package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/"}, zerolog.Nop())
}

func TestRegisterUser_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathAuthRegister, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Asha","email":"a@b.co","password":"secret12","mobile":"9876543210","role":"coach"}`, string(body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"data":{"token":"tok-1"}}`))
	})

	res, err := c.RegisterUser(context.Background(), ports.RegisterUserInput{
		Name: "Asha", Email: "a@b.co", Password: "secret12", Mobile: "9876543210", Role: domain.RoleCoach,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, true, res.Payload["success"])
}

func TestRegisterUser_BackendMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"message":"Email already registered"}`))
	})

	_, err := c.RegisterUser(context.Background(), ports.RegisterUserInput{})
	be, ok := domain.AsBackendError(err)
	require.True(t, ok, "want BackendError, got %v", err)
	assert.Equal(t, http.StatusConflict, be.Status)
	assert.Equal(t, "Email already registered", be.Message)
}

func TestRegisterUser_TextErrorBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := c.RegisterUser(context.Background(), ports.RegisterUserInput{})
	be, ok := domain.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, "upstream exploded", be.Message)
	assert.Equal(t, "upstream exploded", be.Payload["message"])
}

func TestRegisterUser_NestedErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"mobile taken"}}`))
	})

	_, err := c.RegisterUser(context.Background(), ports.RegisterUserInput{})
	be, ok := domain.AsBackendError(err)
	require.True(t, ok)
	assert.Equal(t, "mobile taken", be.Message)
}

func TestRegisterUser_RateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "42")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.RegisterUser(context.Background(), ports.RegisterUserInput{})
	be, ok := domain.AsBackendError(err)
	require.True(t, ok)
	assert.True(t, be.RateLimited())
	assert.Equal(t, 42*time.Second, be.RetryAfter)
	assert.Equal(t, "Too many requests. Please try again in 42 seconds.", be.Message)
}

func TestRegisterUser_MalformedSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>ok</html>"))
	})

	_, err := c.RegisterUser(context.Background(), ports.RegisterUserInput{})
	assert.ErrorIs(t, err, domain.ErrMalformedBackendReply)
}

func TestRegisterUser_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(Config{BaseURL: url}, zerolog.Nop())
	_, err := c.RegisterUser(context.Background(), ports.RegisterUserInput{})
	assert.ErrorIs(t, err, domain.ErrBackendUnreachable)
	_, isBackend := domain.AsBackendError(err)
	assert.False(t, isBackend)
}

func TestAttachRoleProfile_Multipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/coaches/profile", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, []string{"football", "cricket"}, r.MultipartForm.Value["sports"])
		assert.Equal(t, "5", r.FormValue("experience"))

		fh := r.MultipartForm.File["certificate"]
		require.Len(t, fh, 1)
		assert.Equal(t, "cert.pdf", fh[0].Filename)
		assert.Equal(t, "application/pdf", fh[0].Header.Get("Content-Type"))
		f, err := fh[0].Open()
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "%PDF-1.4", string(data))

		_, _ = w.Write([]byte(`{"success":true,"data":{"experience":5}}`))
	})

	payload, err := c.AttachRoleProfile(context.Background(), "tok-1", domain.RoleCoach, ports.ProfileInput{
		Fields: map[string][]string{"sports": {"football", "cricket"}, "experience": {"5"}},
		Files:  []ports.FileUpload{{Field: "certificate", Filename: "cert.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"experience": float64(5)}, payload["data"])
}

func TestAttachRoleProfile_UnknownRole(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://unused"}, zerolog.Nop())
	_, err := c.AttachRoleProfile(context.Background(), "tok", domain.RolePlayer, ports.ProfileInput{})
	assert.ErrorIs(t, err, domain.ErrUnknownRole)
}

func TestMe_UnwrapsUser(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"top-level user", `{"user":{"_id":"u1","role":"coach","status":"pending"}}`},
		{"data.user", `{"data":{"user":{"_id":"u1","role":"coach","status":"pending"}}}`},
		{"data", `{"success":true,"data":{"_id":"u1","role":"coach","status":"pending"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(tt.body))
			})
			u, payload, err := c.Me(context.Background(), "tok")
			require.NoError(t, err)
			assert.Equal(t, "u1", u.ID)
			assert.Equal(t, domain.RoleCoach, u.Role)
			assert.Equal(t, domain.StatusPending, u.Status)
			assert.NotEmpty(t, payload)
		})
	}
}

func TestMe_Unauthorized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"jwt expired"}`))
	})
	_, _, err := c.Me(context.Background(), "tok")
	assert.True(t, domain.IsUnauthorized(err))
}

func TestForward_PassesThroughAnyStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tournaments/my", r.URL.Path)
		assert.Equal(t, "page=2", r.URL.RawQuery)
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	})

	res, err := c.Forward(context.Background(), ports.ForwardRequest{
		Method: http.MethodGet, Path: "/api/tournaments/my", RawQuery: "page=2", Token: "tok",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, res.Status)
	assert.Equal(t, "short and stout", string(res.Body))
	assert.Equal(t, "text/plain", res.Header.Get("Content-Type"))
}

func TestPing(t *testing.T) {
	ok := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	assert.NoError(t, ok.Ping(context.Background()))

	down := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) })
	assert.Error(t, down.Ping(context.Background()))
}

func TestGroupPath(t *testing.T) {
	p, err := GroupPath("coaches", "availability")
	require.NoError(t, err)
	assert.Equal(t, "/api/coaches/availability", p)

	p, err = GroupPath("users", "../../admin/users")
	require.NoError(t, err)
	assert.Equal(t, "/api/users/admin/users", p)

	p, err = GroupPath("teams", "")
	require.NoError(t, err)
	assert.Equal(t, "/api/teams", p)

	_, err = GroupPath("payments", "x")
	assert.True(t, errors.Is(err, domain.ErrUnknownEndpointGroup))
}
