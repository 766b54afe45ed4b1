package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

const (
	ctxToken     = "token"
	ctxSessionID = "session_id"
)

// Token returns the backend bearer token resolved for this request, if any.
func Token(c echo.Context) string {
	tok, _ := c.Get(ctxToken).(string)
	return tok
}

// SessionID returns the id of the cookie session backing this request, if any.
func SessionID(c echo.Context) string {
	id, _ := c.Get(ctxSessionID).(string)
	return id
}

// SessionCookie writes and clears the session id cookie.
type SessionCookie struct {
	Name   string
	Secure bool
}

func (sc SessionCookie) Set(c echo.Context, sess *domain.Session) {
	c.SetCookie(&http.Cookie{
		Name:     sc.Name,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (sc SessionCookie) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sc.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sc.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Session resolves the backend token for the request. An Authorization bearer
// header wins; otherwise the session cookie is looked up. It never rejects a
// request for lacking a token: handlers decide whether one is required.
func Session(sessions ports.SessionService, cookie SessionCookie, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
					return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
				}
				c.Set(ctxToken, strings.TrimSpace(parts[1]))
				return next(c)
			}

			ck, err := c.Cookie(cookie.Name)
			if err != nil || ck.Value == "" {
				return next(c)
			}

			sess, err := sessions.Resolve(c.Request().Context(), ck.Value)
			switch {
			case errors.Is(err, domain.ErrSessionNotFound):
				cookie.Clear(c)
			case err != nil:
				log.Warn().Err(err).Msg("session lookup failed")
			default:
				c.Set(ctxToken, sess.Token)
				c.Set(ctxSessionID, sess.ID)
			}
			return next(c)
		}
	}
}

// RequireToken rejects requests that reached it without a resolved token.
func RequireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if Token(c) == "" {
				return domain.ErrMissingToken
			}
			return next(c)
		}
	}
}
