package backend

import (
	"path"
	"strings"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
)

const (
	PathAuthLogin    = "/api/auth/login"
	PathAuthRegister = "/api/auth/register"
	PathAuthMe       = "/api/auth/me"
	PathAuthProfile  = "/api/auth/profile"
)

// groups lists the backend endpoint groups the website talks to. Sub-paths
// (users/leaderboard, coaches/availability, stores/products, delivery/orders,
// tournaments/my, venues/book, bookings/my, admin/users, ...) are forwarded as-is.
var groups = map[string]string{
	"auth":        "/api/auth",
	"users":       "/api/users",
	"coaches":     "/api/coaches",
	"stores":      "/api/stores",
	"delivery":    "/api/delivery",
	"players":     "/api/players",
	"tournaments": "/api/tournaments",
	"teams":       "/api/teams",
	"venues":      "/api/venues",
	"bookings":    "/api/bookings",
	"admin":       "/api/admin",
}

var profilePaths = map[domain.Role]string{
	domain.RoleCoach:    "/api/coaches/profile",
	domain.RoleSeller:   "/api/stores/profile",
	domain.RoleDelivery: "/api/delivery/profile",
}

var dashboardPaths = map[domain.Role]string{
	domain.RolePlayer:   "/api/players/dashboard",
	domain.RoleCoach:    "/api/coaches/dashboard",
	domain.RoleSeller:   "/api/stores/dashboard",
	domain.RoleDelivery: "/api/delivery/dashboard",
}

// GroupPath resolves a group name and a sub-path into a backend path. The
// sub-path is cleaned so it can never climb out of its group.
func GroupPath(group, rest string) (string, error) {
	prefix, ok := groups[group]
	if !ok {
		return "", domain.ErrUnknownEndpointGroup
	}
	cleaned := path.Clean("/" + strings.TrimPrefix(rest, "/"))
	if cleaned == "/" {
		return prefix, nil
	}
	return prefix + cleaned, nil
}
