package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

// AuthService implements login, logout and the "who am I" lookup on top of
// the backend's auth endpoints.
type AuthService struct {
	backend  ports.BackendClient
	sessions ports.SessionService
	logger   zerolog.Logger
}

func NewAuthService(backend ports.BackendClient, sessions ports.SessionService, logger zerolog.Logger) *AuthService {
	return &AuthService{backend: backend, sessions: sessions, logger: logger}
}

// Login authenticates against the backend and starts a session for the
// issued token. A session that cannot be stored does not fail the login: the
// token is still in the returned payload.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginOutput, error) {
	email = domain.NormalizeEmail(email)
	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	out := &ports.LoginOutput{Status: res.Status, Payload: res.Payload}
	if res.Token == "" {
		s.logger.Warn().Str("email", domain.MaskEmail(email)).Msg("login succeeded without a token")
		return out, nil
	}

	sess, err := s.sessions.Start(ctx, res.Token, userBlob(res.User))
	if err != nil {
		s.logger.Warn().Err(err).Str("email", domain.MaskEmail(email)).Msg("session not started")
		return out, nil
	}
	out.Session = sess
	return out, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.End(ctx, sessionID)
}

// CurrentUser asks the backend who owns token and refreshes the cached user
// of sessionID. A backend 401 ends the session.
func (s *AuthService) CurrentUser(ctx context.Context, token, sessionID string) (*ports.CurrentUserOutput, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}

	user, payload, err := s.backend.Me(ctx, token)
	if err != nil {
		if domain.IsUnauthorized(err) {
			s.forget(ctx, sessionID)
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if sessionID != "" {
		if err := s.sessions.Remember(ctx, sessionID, userBlob(user)); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to refresh cached user")
		}
	}
	return &ports.CurrentUserOutput{User: user, Payload: payload}, nil
}

func (s *AuthService) forget(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.sessions.End(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to end session after 401")
	}
}

func userBlob(u *domain.User) json.RawMessage {
	if u == nil {
		return nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return nil
	}
	return b
}
