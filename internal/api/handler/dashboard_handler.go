package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/metrics"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/middleware"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

const (
	loginPath         = "/login"
	homePath          = "/"
	accountStatusPath = "/account-status"
)

type DashboardHandler struct {
	service ports.DashboardService
	keeper  sessionKeeper
	log     zerolog.Logger
}

func NewDashboardHandler(service ports.DashboardService, sessions ports.SessionService, cookie middleware.SessionCookie, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		keeper:  sessionKeeper{sessions: sessions, cookie: cookie, log: log},
		log:     log,
	}
}

type dashboardResponse struct {
	Success   bool           `json:"success"`
	Role      domain.Role    `json:"role"`
	User      *domain.User   `json:"user"`
	Dashboard map[string]any `json:"dashboard"`
}

type errorPanel struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	LoginURL string `json:"loginUrl"`
}

// Get loads a role dashboard. Access problems are answered with redirects;
// anything else renders the error panel.
//
// @Summary      Role dashboard
// @Tags         dashboard
// @Produce      json
// @Param        role  path      string  true  "Dashboard"  Enums(player, coach, store, delivery)
// @Success      200   {object}  dashboardResponse
// @Success      302
// @Failure      404   {object}  messageResponse
// @Failure      500   {object}  errorPanel
// @Router       /dashboard/{role} [get]
func (h *DashboardHandler) Get(c echo.Context) error {
	role, err := domain.RoleFromPath(c.Param("role"))
	if err != nil {
		return err
	}

	view, err := h.service.Load(c.Request().Context(), middleware.Token(c), role)
	if err == nil {
		return c.JSON(http.StatusOK, dashboardResponse{
			Success:   true,
			Role:      role,
			User:      view.User,
			Dashboard: view.Sections,
		})
	}

	label := string(role)
	var statusErr *domain.AccountStatusError
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		metrics.DashboardLoadsTotal.WithLabelValues(label, "login").Inc()
		return c.Redirect(http.StatusFound, loginPath)
	case errors.Is(err, domain.ErrUnauthorized):
		metrics.DashboardLoadsTotal.WithLabelValues(label, "login").Inc()
		h.keeper.drop(c)
		return c.Redirect(http.StatusFound, loginPath)
	case errors.Is(err, domain.ErrRoleMismatch):
		metrics.DashboardLoadsTotal.WithLabelValues(label, "home").Inc()
		return c.Redirect(http.StatusFound, homePath)
	case errors.As(err, &statusErr):
		metrics.DashboardLoadsTotal.WithLabelValues(label, "status").Inc()
		return c.Redirect(http.StatusFound, accountStatusPath+"?status="+url.QueryEscape(string(statusErr.Status)))
	}

	metrics.DashboardLoadsTotal.WithLabelValues(label, "error").Inc()
	h.log.Error().Err(err).Str("role", label).Msg("dashboard load failed")
	code, msg := http.StatusInternalServerError, "Failed to load dashboard"
	if be, ok := domain.AsBackendError(err); ok {
		code, msg = be.Status, be.Message
	} else if errors.Is(err, domain.ErrBackendUnreachable) {
		msg = domain.ErrBackendUnreachable.Error()
	}
	return c.JSON(code, errorPanel{Message: msg, LoginURL: loginPath})
}
