package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/metrics"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

// SessionService keeps the backend token server-side, keyed by a random id
// that is the only thing the browser holds.
type SessionService struct {
	store  ports.SessionStore
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

func NewSessionService(store ports.SessionStore, ttl time.Duration, logger zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{store: store, ttl: ttl, now: time.Now, logger: logger}
}

// Start stores a new session for token. The session expires with the token's
// exp claim when it is a JWT that carries one, otherwise after the configured TTL.
func (s *SessionService) Start(ctx context.Context, token string, user json.RawMessage) (*domain.Session, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	now := s.now().UTC()
	expiresAt := s.expiry(token, now)
	if !expiresAt.After(now) {
		metrics.SessionsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrUnauthorized
	}

	sess := &domain.Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		ExpiresAt: expiresAt,
	}
	if err := s.store.Save(ctx, sess, expiresAt.Sub(now)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	metrics.SessionsTotal.WithLabelValues("started").Inc()
	return sess, nil
}

func (s *SessionService) Resolve(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		metrics.SessionsTotal.WithLabelValues("expired").Inc()
		if err := s.store.Delete(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("session_id", id).Msg("failed to drop expired session")
		}
		return nil, domain.ErrSessionNotFound
	}
	return sess, nil
}

// Remember replaces the cached user blob, keeping the session's expiry.
func (s *SessionService) Remember(ctx context.Context, id string, user json.RawMessage) error {
	if id == "" {
		return domain.ErrSessionNotFound
	}
	return s.store.UpdateUser(ctx, id, user)
}

func (s *SessionService) End(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := s.store.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	metrics.SessionsTotal.WithLabelValues("ended").Inc()
	return nil
}

// expiry reads exp without verifying the signature: the website never holds
// the backend's signing key and only needs to know when to forget the token.
func (s *SessionService) expiry(token string, now time.Time) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time.UTC()
		}
	}
	return now.Add(s.ttl)
}
