package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/middleware"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

// ResolvePath maps an endpoint group and sub-path to a backend path.
type ResolvePath func(group, rest string) (string, error)

type ProxyHandler struct {
	backend ports.BackendClient
	resolve ResolvePath
	keeper  sessionKeeper
}

func NewProxyHandler(backend ports.BackendClient, resolve ResolvePath, sessions ports.SessionService, cookie middleware.SessionCookie, log zerolog.Logger) *ProxyHandler {
	return &ProxyHandler{
		backend: backend,
		resolve: resolve,
		keeper:  sessionKeeper{sessions: sessions, cookie: cookie, log: log},
	}
}

// Forward passes an authenticated call through to one of the backend endpoint groups.
//
// @Summary      Backend passthrough
// @Tags         proxy
// @Param        group  path  string  true  "Endpoint group"  Enums(auth, users, coaches, stores, delivery, players, tournaments, teams, venues, bookings, admin)
// @Param        path   path  string  false "Path inside the group"
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Failure      429  {object}  messageResponse
// @Router       /api/proxy/{group}/{path} [get]
func (h *ProxyHandler) Forward(c echo.Context) error {
	target, err := h.resolve(c.Param("group"), c.Param("*"))
	if err != nil {
		return err
	}

	req := c.Request()
	res, err := h.backend.Forward(req.Context(), ports.ForwardRequest{
		Method:      req.Method,
		Path:        target,
		RawQuery:    req.URL.RawQuery,
		Token:       middleware.Token(c),
		ContentType: req.Header.Get(echo.HeaderContentType),
		Body:        req.Body,
	})
	if err != nil {
		return err
	}

	if retry := res.Header.Get("Retry-After"); retry != "" {
		c.Response().Header().Set("Retry-After", retry)
	}

	switch res.Status {
	case http.StatusUnauthorized:
		h.keeper.drop(c)
	case http.StatusTooManyRequests:
		wait := domain.ParseRetryAfter(res.Header.Get("Retry-After"), time.Now())
		if wait > 0 {
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())))
		}
		return c.JSON(http.StatusTooManyRequests, messageResponse{Message: domain.RateLimitMessage(wait)})
	}

	contentType := res.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}
	return c.Blob(res.Status, contentType, res.Body)
}
