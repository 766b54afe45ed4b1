package ports

import (
	"context"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
)

// LoginOutput is what the login route returns to the browser.
type LoginOutput struct {
	Status  int
	Payload map[string]any
	// Session is nil when the backend issued no token or the session could not be stored.
	Session *domain.Session
}

// CurrentUserOutput is the fresh "who am I" answer.
type CurrentUserOutput struct {
	User    *domain.User
	Payload map[string]any
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginOutput, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentUser(ctx context.Context, token, sessionID string) (*CurrentUserOutput, error)
}
