// Package backend is the HTTP client for the PlayIndia backend REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/metrics"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

type Config struct {
	BaseURL string
	// Timeout bounds each call end to end. Zero means no timeout.
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

var _ ports.BackendClient = (*Client)(nil)

func NewClient(cfg Config, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log.With().Str("component", "backend").Logger(),
	}
}

func (c *Client) RegisterUser(ctx context.Context, in ports.RegisterUserInput) (*ports.RegistrationResult, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode register body: %w", err)
	}
	r, err := c.call(ctx, "auth_register", http.MethodPost, PathAuthRegister, "", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	payload, err := r.object("auth_register")
	if err != nil {
		return nil, err
	}
	return &ports.RegistrationResult{Status: r.status, Payload: payload, Token: tokenOf(payload)}, nil
}

// AttachRoleProfile posts the role profile as multipart/form-data, authenticated
// with the token issued by RegisterUser.
func (c *Client) AttachRoleProfile(ctx context.Context, token string, role domain.Role, in ports.ProfileInput) (map[string]any, error) {
	p, ok := profilePaths[role]
	if !ok {
		return nil, fmt.Errorf("attach profile for %q: %w", role, domain.ErrUnknownRole)
	}
	body, contentType, err := encodeMultipart(in)
	if err != nil {
		return nil, fmt.Errorf("encode %s profile: %w", role, err)
	}
	endpoint := string(role) + "_profile"
	r, err := c.call(ctx, endpoint, http.MethodPost, p, token, contentType, body)
	if err != nil {
		return nil, err
	}
	return r.object(endpoint)
}

func (c *Client) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("encode login body: %w", err)
	}
	r, err := c.call(ctx, "auth_login", http.MethodPost, PathAuthLogin, "", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	payload, err := r.object("auth_login")
	if err != nil {
		return nil, err
	}
	res := &ports.LoginResult{Status: r.status, Token: tokenOf(payload), Payload: payload}
	if u, ok := userOf(payload); ok {
		res.User = u
	}
	return res, nil
}

// Me fetches the current user. The raw payload is returned alongside so the
// caller can cache exactly what the backend sent.
func (c *Client) Me(ctx context.Context, token string) (*domain.User, map[string]any, error) {
	r, err := c.call(ctx, "auth_me", http.MethodGet, PathAuthMe, token, "", nil)
	if err != nil {
		return nil, nil, err
	}
	payload, err := r.object("auth_me")
	if err != nil {
		return nil, nil, err
	}
	u, ok := userOf(payload)
	if !ok {
		return nil, nil, fmt.Errorf("auth_me: no user in reply: %w", domain.ErrMalformedBackendReply)
	}
	return u, payload, nil
}

func (c *Client) Dashboard(ctx context.Context, token string, role domain.Role) (map[string]any, error) {
	p, ok := dashboardPaths[role]
	if !ok {
		return nil, fmt.Errorf("dashboard for %q: %w", role, domain.ErrUnknownRole)
	}
	endpoint := string(role) + "_dashboard"
	r, err := c.call(ctx, endpoint, http.MethodGet, p, token, "", nil)
	if err != nil {
		return nil, err
	}
	return r.object(endpoint)
}

// Forward passes a request through and returns the reply untouched, whatever
// its status. Only transport failures are errors.
func (c *Client) Forward(ctx context.Context, fr ports.ForwardRequest) (*ports.ForwardResponse, error) {
	target := fr.Path
	if fr.RawQuery != "" {
		target += "?" + fr.RawQuery
	}
	r, err := c.call(ctx, "forward", fr.Method, target, fr.Token, fr.ContentType, fr.Body)
	if err != nil {
		return nil, err
	}
	return &ports.ForwardResponse{Status: r.status, Header: r.header, Body: r.raw}, nil
}

// Ping reports whether the backend answers at all. Any reply below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	r, err := c.call(ctx, "ping", http.MethodGet, "/", "", "", nil)
	if err != nil {
		return err
	}
	if r.status >= http.StatusInternalServerError {
		return fmt.Errorf("backend ping: status %d", r.status)
	}
	return nil
}

func (c *Client) call(ctx context.Context, endpoint, method, target, token, contentType string, body io.Reader) (*reply, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+target, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		c.log.Warn().Err(err).Str("endpoint", endpoint).Msg("backend unreachable")
		return nil, fmt.Errorf("%s: %w: %v", endpoint, domain.ErrBackendUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s: read body: %w: %v", endpoint, domain.ErrBackendUnreachable, err)
	}
	metrics.BackendRequestsTotal.WithLabelValues(endpoint, statusClass(resp.StatusCode)).Inc()

	c.log.Debug().
		Str("endpoint", endpoint).
		Str("method", method).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("backend call")

	return newReply(resp, raw), nil
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encodeMultipart writes fields in key order, then files, each file part
// keeping its original content type.
func encodeMultipart(in ports.ProfileInput) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(in.Fields))
	for k := range in.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range in.Fields[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}

	for _, f := range in.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(f.Field), quoteEscaper.Replace(f.Filename)))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
