package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/middleware"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

type StatusHandler struct {
	service ports.StatusService
	keeper  sessionKeeper
	log     zerolog.Logger
}

func NewStatusHandler(service ports.StatusService, sessions ports.SessionService, cookie middleware.SessionCookie, log zerolog.Logger) *StatusHandler {
	return &StatusHandler{
		service: service,
		keeper:  sessionKeeper{sessions: sessions, cookie: cookie, log: log},
		log:     log,
	}
}

type statusResponse struct {
	Success bool          `json:"success"`
	Status  domain.Status `json:"status"`
	Role    domain.Role   `json:"role"`
}

// Current returns the account's approval status once.
//
// @Summary      Account status
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  statusResponse
// @Failure      401  {object}  messageResponse
// @Router       /api/account/status [get]
func (h *StatusHandler) Current(c echo.Context) error {
	user, err := h.service.Current(c.Request().Context(), middleware.Token(c))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			h.keeper.drop(c)
		}
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Success: true, Status: user.Status, Role: user.Role})
}

// Stream pushes the account status as server-sent events, re-polling while it
// stays pending. The stream ends when the status changes or the client leaves.
//
// @Summary      Account status stream
// @Tags         account
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Failure      401  {object}  messageResponse
// @Router       /api/account/status/stream [get]
func (h *StatusHandler) Stream(c echo.Context) error {
	res := c.Response()
	started := false

	emit := func(u *domain.User) error {
		if !started {
			res.Header().Set(echo.HeaderContentType, "text/event-stream")
			res.Header().Set("Cache-Control", "no-cache")
			res.Header().Set("Connection", "keep-alive")
			res.Header().Set("X-Accel-Buffering", "no")
			res.WriteHeader(http.StatusOK)
			started = true
		}
		return writeEvent(res, "status", statusResponse{Success: true, Status: u.Status, Role: u.Role})
	}

	err := h.service.Watch(c.Request().Context(), middleware.Token(c), emit)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		h.keeper.drop(c)
	}
	if !started {
		return err
	}
	// Headers are gone; report the failure in-band.
	h.log.Warn().Err(err).Msg("status stream ended with error")
	return writeEvent(res, "error", messageResponse{Success: false, Message: err.Error()})
}

func writeEvent(res *echo.Response, event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	res.Flush()
	return nil
}
