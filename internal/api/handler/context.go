package handler

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/middleware"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

// sessionKeeper starts and drops cookie sessions on behalf of handlers. Its
// failures are logged only: the request that triggered them still succeeds.
type sessionKeeper struct {
	sessions ports.SessionService
	cookie   middleware.SessionCookie
	log      zerolog.Logger
}

func (k sessionKeeper) start(c echo.Context, token string, user json.RawMessage) {
	if token == "" {
		return
	}
	sess, err := k.sessions.Start(c.Request().Context(), token, user)
	if err != nil {
		k.log.Warn().Err(err).Msg("session not started")
		return
	}
	k.cookie.Set(c, sess)
}

// drop forgets the request's session, server side and in the browser.
func (k sessionKeeper) drop(c echo.Context) {
	if id := middleware.SessionID(c); id != "" {
		if err := k.sessions.End(c.Request().Context(), id); err != nil {
			k.log.Warn().Err(err).Str("session_id", id).Msg("failed to end session")
		}
	}
	k.cookie.Clear(c)
}

// userField picks the user object out of a backend auth payload for caching.
func userField(payload map[string]any) json.RawMessage {
	var u any = payload["user"]
	if u == nil {
		if data, ok := payload["data"].(map[string]any); ok {
			u = data["user"]
		}
	}
	if u == nil {
		return nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return nil
	}
	return b
}
