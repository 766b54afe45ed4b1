package ports

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
)

// SessionStore persists sessions. Get returns domain.ErrSessionNotFound for
// unknown or expired ids.
type SessionStore interface {
	Save(ctx context.Context, s *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	UpdateUser(ctx context.Context, id string, user json.RawMessage) error
	Delete(ctx context.Context, id string) error
}

// SessionService owns the lifetime of a session token on the website side.
type SessionService interface {
	Start(ctx context.Context, token string, user json.RawMessage) (*domain.Session, error)
	Resolve(ctx context.Context, id string) (*domain.Session, error)
	Remember(ctx context.Context, id string, user json.RawMessage) error
	End(ctx context.Context, id string) error
}
