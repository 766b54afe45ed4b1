package ports

import (
	"context"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
)

// DashboardView is a loaded role dashboard with every known field defaulted.
type DashboardView struct {
	User     *domain.User
	Sections map[string]any
}

// DashboardService loads the dashboard for one role.
//
// Errors: domain.ErrMissingToken before any backend call, domain.ErrUnauthorized
// on a backend 401, domain.ErrRoleMismatch, *domain.AccountStatusError.
type DashboardService interface {
	Load(ctx context.Context, token string, role domain.Role) (*DashboardView, error)
}

// StatusService reports account approval status, optionally following it
// while it remains pending.
type StatusService interface {
	Current(ctx context.Context, token string) (*domain.User, error)
	Watch(ctx context.Context, token string, emit func(*domain.User) error) error
}
