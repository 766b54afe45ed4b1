package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/middleware"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/validation"
)

type AuthHandler struct {
	authService ports.AuthService
	keeper      sessionKeeper
}

func NewAuthHandler(authService ports.AuthService, sessions ports.SessionService, cookie middleware.SessionCookie, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		keeper:      sessionKeeper{sessions: sessions, cookie: cookie, log: log},
	}
}

type sessionResponse struct {
	Success bool           `json:"success"`
	User    *domain.User   `json:"user"`
	Data    map[string]any `json:"data,omitempty"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Login authenticates against the backend and starts a cookie session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      validation.LoginForm  true  "Login credentials"
// @Success      200   {object}  map[string]interface{}
// @Failure      401   {object}  messageResponse
// @Failure      422   {object}  messageResponse
// @Failure      429   {object}  messageResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req validation.LoginForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	out, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if out.Session != nil {
		h.keeper.cookie.Set(c, out.Session)
	}
	return c.JSON(out.Status, out.Payload)
}

// Logout ends the session and clears the cookie. It succeeds without a session.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), middleware.SessionID(c)); err != nil {
		return err
	}
	h.keeper.cookie.Clear(c)
	return c.JSON(http.StatusOK, messageResponse{Success: true, Message: "Logged out"})
}

// Session returns the current user as the backend sees it.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  messageResponse
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	out, err := h.authService.CurrentUser(c.Request().Context(), middleware.Token(c), middleware.SessionID(c))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			h.keeper.cookie.Clear(c)
		}
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Success: true, User: out.User, Data: out.Payload})
}
