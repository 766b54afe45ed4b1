package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/api/metrics"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/ports"
)

type dashboardFields struct {
	numbers []string
	lists   []string
}

// dashboardSchemas lists the fields each dashboard renders. Missing or null
// values are filled so the page never has to guard against absent sections.
var dashboardSchemas = map[domain.Role]dashboardFields{
	domain.RolePlayer: {
		numbers: []string{"totalBookings", "upcomingBookings", "tournamentsJoined", "teamsCount", "points"},
		lists:   []string{"bookings", "tournaments", "teams", "recentActivity"},
	},
	domain.RoleCoach: {
		numbers: []string{"totalStudents", "totalSessions", "totalEarnings", "monthlyEarnings", "rating", "pendingBookings"},
		lists:   []string{"upcomingSessions", "recentBookings", "students", "reviews"},
	},
	domain.RoleSeller: {
		numbers: []string{"totalProducts", "totalOrders", "pendingOrders", "revenue", "monthlyRevenue", "rating"},
		lists:   []string{"recentOrders", "products", "lowStockProducts"},
	},
	domain.RoleDelivery: {
		numbers: []string{"totalDeliveries", "completedDeliveries", "pendingDeliveries", "earnings", "todayEarnings", "rating"},
		lists:   []string{"activeOrders", "completedOrders", "recentDeliveries"},
	},
}

type DashboardService struct {
	backend ports.BackendClient
	logger  zerolog.Logger
}

func NewDashboardService(backend ports.BackendClient, logger zerolog.Logger) *DashboardService {
	return &DashboardService{backend: backend, logger: logger}
}

// Load gates on the current user (role first, then status) and only then
// fetches the role dashboard.
func (s *DashboardService) Load(ctx context.Context, token string, role domain.Role) (*ports.DashboardView, error) {
	if token == "" {
		return nil, domain.ErrMissingToken
	}
	if _, ok := dashboardSchemas[role]; !ok {
		return nil, domain.ErrUnknownRole
	}

	user, _, err := s.backend.Me(ctx, token)
	if err != nil {
		return nil, unauthorizedOr(err)
	}
	if user.Role != role {
		s.logger.Info().Str("user_role", string(user.Role)).Str("dashboard", string(role)).Msg("dashboard role mismatch")
		return nil, domain.ErrRoleMismatch
	}
	if user.Status != domain.StatusActive {
		return nil, &domain.AccountStatusError{Status: user.Status}
	}

	payload, err := s.backend.Dashboard(ctx, token, role)
	if err != nil {
		return nil, unauthorizedOr(err)
	}

	sections := dashboardSections(payload)
	applyDashboardDefaults(role, sections)
	metrics.DashboardLoadsTotal.WithLabelValues(string(role), "ok").Inc()
	return &ports.DashboardView{User: user, Sections: sections}, nil
}

// dashboardSections unwraps {success, data: {...}} and copies the result so
// defaults never write into the decoded payload.
func dashboardSections(payload map[string]any) map[string]any {
	src := payload
	if data, ok := payload["data"].(map[string]any); ok {
		src = data
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		if k == "success" || k == "message" {
			continue
		}
		out[k] = v
	}
	return out
}

func applyDashboardDefaults(role domain.Role, sections map[string]any) {
	schema := dashboardSchemas[role]
	for _, k := range schema.numbers {
		if v, ok := sections[k]; !ok || v == nil {
			sections[k] = 0
		}
	}
	for _, k := range schema.lists {
		if v, ok := sections[k]; !ok || v == nil {
			sections[k] = []any{}
		}
	}
}

func unauthorizedOr(err error) error {
	if domain.IsUnauthorized(err) {
		return domain.ErrUnauthorized
	}
	return err
}
